// Package material holds the candidate clip type shared by providers, the
// cache stage and the acquisition orchestrator.
package material

import "fmt"

// Candidate is a clip that matched search and resolution criteria but has not been downloaded yet.
// URL is its only identity: it drives deduplication and the cache key.
type Candidate struct {
	Provider string  `json:"provider"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("provider=%s url=%q duration=%.1fs", c.Provider, c.URL, c.Duration)
}

// Dedup tracks URLs already accepted within one acquisition run.
// The zero value is ready to use. Not safe for concurrent use.
type Dedup struct {
	seen map[string]struct{}
}

// Accept returns the candidates whose URL has not been accepted before and records them.
// Duplicates within the same batch are also dropped; order is preserved.
func (d *Dedup) Accept(candidates []Candidate) []Candidate {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := d.seen[c.URL]; ok {
			continue
		}
		d.seen[c.URL] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Seen reports whether url was accepted already.
func (d *Dedup) Seen(url string) bool {
	_, ok := d.seen[url]
	return ok
}

// Len is the number of distinct URLs accepted so far.
func (d *Dedup) Len() int { return len(d.seen) }
