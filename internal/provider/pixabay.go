package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/snapetech/clipstock/internal/aspect"
	"github.com/snapetech/clipstock/internal/material"
	"github.com/snapetech/clipstock/internal/safeurl"
)

// PixabayBaseURL is the public Pixabay API host.
const PixabayBaseURL = "https://pixabay.com"

// pixabayRenditions is the scan order over a hit's renditions (largest first).
var pixabayRenditions = []string{"large", "medium", "small", "tiny"}

// Pixabay searches the Pixabay video catalog. The key travels in the query string;
// rendition links are public, so downloads carry no credentials.
type Pixabay struct {
	baseClient
}

type pixabayResponse struct {
	Hits *[]pixabayHit `json:"hits"`
}

type pixabayHit struct {
	ID       int64                       `json:"id"`
	Duration float64                     `json:"duration"`
	Videos   map[string]pixabayRendition `json:"videos"`
}

type pixabayRendition struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (p *Pixabay) Authorize(*http.Request) {}

// SearchURL builds the catalog query for term. Pixabay has no orientation filter;
// resolution matching does that work client-side.
func (p *Pixabay) SearchURL(term string) string {
	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("q", term)
	q.Set("per_page", strconv.Itoa(PageSize))
	return p.baseURL + "/api/videos/?" + q.Encode()
}

func (p *Pixabay) Search(ctx context.Context, term string, minDuration float64, a aspect.Aspect) ([]material.Candidate, error) {
	var resp pixabayResponse
	err := p.getJSON(ctx, p.SearchURL(term), nil, &resp)
	if err == nil && resp.Hits == nil {
		err = fmt.Errorf("%w: no \"hits\" field", ErrMalformedResponse)
	}
	p.metrics.Search(p.name, outcome(err))
	if err != nil {
		log.Printf("provider: pixabay search failed term=%q err=%v", term, err)
		return nil, err
	}

	target := aspect.Resolution(a)
	var out []material.Candidate
	for _, h := range *resp.Hits {
		if h.Duration < minDuration {
			continue
		}
		for _, name := range pixabayRenditions {
			r, ok := h.Videos[name]
			if !ok || !aspect.Matches(r.Width, r.Height, target, aspect.DefaultTolerance) {
				continue
			}
			if !safeurl.IsHTTPOrHTTPS(r.URL) {
				continue
			}
			out = append(out, material.Candidate{Provider: p.name, URL: r.URL, Duration: h.Duration})
			break
		}
	}
	log.Printf("provider: pixabay search term=%q items=%d candidates=%d target=%s", term, len(*resp.Hits), len(out), target)
	return out, nil
}
