package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	defaultLinkSelector = "a[href]"
	maxPages            = 20
)

// Target describes one company career site. ListURL may contain a single %d
// verb, which is replaced with the page number 1..Pages.
type Target struct {
	CompanyName   string `json:"company_name"`
	CareerPageURL string `json:"career_page_url"`
	ListURL       string `json:"list_url"`
	LinkSelector  string `json:"link_selector"`
	Pages         int    `json:"pages"`
	Headless      bool   `json:"headless"`
}

func (t Target) withDefaults() Target {
	t.CompanyName = strings.TrimSpace(t.CompanyName)
	t.ListURL = strings.TrimSpace(t.ListURL)
	if strings.TrimSpace(t.LinkSelector) == "" {
		t.LinkSelector = defaultLinkSelector
	}
	if strings.TrimSpace(t.CareerPageURL) == "" {
		t.CareerPageURL = t.ListURL
	}
	if t.Pages <= 0 {
		t.Pages = 1
	}
	if t.Pages > maxPages {
		t.Pages = maxPages
	}
	return t
}

func (t Target) validate() error {
	if t.CompanyName == "" {
		return fmt.Errorf("target company_name is required")
	}
	if t.ListURL == "" {
		return fmt.Errorf("target %q: list_url is required", t.CompanyName)
	}
	return nil
}

func (t Target) listURLs() []string {
	if !strings.Contains(t.ListURL, "%d") {
		return []string{t.ListURL}
	}
	out := make([]string, 0, t.Pages)
	for page := 1; page <= t.Pages; page++ {
		out = append(out, fmt.Sprintf(t.ListURL, page))
	}
	return out
}

// LoadTargets reads a JSON array of targets from path.
func LoadTargets(path string) ([]Target, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	var raw []Target
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	out := make([]Target, 0, len(raw))
	for _, t := range raw {
		t = t.withDefaults()
		if err := t.validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
