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

// PexelsBaseURL is the public Pexels API host.
const PexelsBaseURL = "https://api.pexels.com"

// Pexels searches the Pexels video catalog. The API key goes in the Authorization header
// for both search and download requests.
type Pexels struct {
	baseClient
}

type pexelsResponse struct {
	// Pointer so a missing field is distinguishable from an empty page.
	Videos *[]pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int64        `json:"id"`
	Duration   float64      `json:"duration"`
	VideoFiles []pexelsFile `json:"video_files"`
}

type pexelsFile struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
}

func (p *Pexels) Authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}
}

// SearchURL builds the catalog query for term.
func (p *Pexels) SearchURL(term string, a aspect.Aspect) string {
	q := url.Values{}
	q.Set("query", term)
	q.Set("per_page", strconv.Itoa(PageSize))
	q.Set("orientation", aspect.Orientation(a))
	return p.baseURL + "/videos/search?" + q.Encode()
}

func (p *Pexels) Search(ctx context.Context, term string, minDuration float64, a aspect.Aspect) ([]material.Candidate, error) {
	var resp pexelsResponse
	err := p.getJSON(ctx, p.SearchURL(term, a), p.Authorize, &resp)
	if err == nil && resp.Videos == nil {
		err = fmt.Errorf("%w: no \"videos\" field", ErrMalformedResponse)
	}
	p.metrics.Search(p.name, outcome(err))
	if err != nil {
		log.Printf("provider: pexels search failed term=%q err=%v", term, err)
		return nil, err
	}

	target := aspect.Resolution(a)
	var out []material.Candidate
	for _, v := range *resp.Videos {
		if v.Duration < minDuration {
			continue
		}
		for _, f := range v.VideoFiles {
			if !aspect.Matches(f.Width, f.Height, target, aspect.DefaultTolerance) {
				continue
			}
			if !safeurl.IsHTTPOrHTTPS(f.Link) {
				continue
			}
			out = append(out, material.Candidate{Provider: p.name, URL: f.Link, Duration: v.Duration})
			break
		}
	}
	log.Printf("provider: pexels search term=%q items=%d candidates=%d target=%s", term, len(*resp.Videos), len(out), target)
	return out, nil
}
