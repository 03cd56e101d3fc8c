package crawler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"job-navigator/internal/usecase"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// Posting is the subset of a schema.org JobPosting the catalog keeps.
type Posting struct {
	Title                 string
	Description           string
	Qualifications        string
	Preferred             string
	EmploymentType        string
	ExperienceRequirement string
	ExperienceCategory    string
	Location              string
	OrganizationName      string
	OrganizationURL       string
	Skills                []string
	DatePosted            *time.Time
	ValidThrough          *time.Time
	URL                   string
}

// jsonLDBlocks returns the raw text of every JSON-LD script under sel.
func jsonLDBlocks(sel *goquery.Selection) []string {
	out := []string{}
	sel.Find(jsonLDSelector).Each(func(_ int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			out = append(out, txt)
		}
	})
	return out
}

// ParsePostings extracts JobPosting nodes from one JSON-LD block. The block
// may be a single node, an array of nodes or an @graph container. Blocks that
// are not JSON are an error; blocks without postings yield nothing.
func ParsePostings(block string) ([]Posting, error) {
	var root any
	if err := json.Unmarshal([]byte(block), &root); err != nil {
		return nil, fmt.Errorf("decode json-ld: %w", err)
	}

	out := []Posting{}
	var walk func(v any)
	walk = func(v any) {
		switch n := v.(type) {
		case []any:
			for _, it := range n {
				walk(it)
			}
		case map[string]any:
			if g, ok := n["@graph"]; ok {
				walk(g)
			}
			if isJobPosting(n["@type"]) {
				out = append(out, newPosting(n))
			}
		}
	}
	walk(root)
	return out, nil
}

func isJobPosting(v any) bool {
	for _, t := range strs(v) {
		if strings.EqualFold(t, "JobPosting") {
			return true
		}
	}
	return false
}

func newPosting(n map[string]any) Posting {
	p := Posting{
		Title:          str(n["title"]),
		Description:    htmlText(str(n["description"])),
		Qualifications: htmlText(str(n["qualifications"])),
		Preferred:      htmlText(str(n["preferredQualifications"])),
		EmploymentType: employmentType(strs(n["employmentType"])),
		Location:       location(n["jobLocation"]),
		Skills:         skills(n["skills"]),
		DatePosted:     parseDate(str(n["datePosted"])),
		ValidThrough:   parseDate(str(n["validThrough"])),
		URL:            str(n["url"]),
	}
	if p.Title == "" {
		p.Title = str(n["name"])
	}
	p.ExperienceRequirement, p.ExperienceCategory = experience(n["experienceRequirements"])

	switch org := n["hiringOrganization"].(type) {
	case string:
		p.OrganizationName = strings.TrimSpace(org)
	case map[string]any:
		p.OrganizationName = str(org["name"])
		p.OrganizationURL = str(org["sameAs"])
		if p.OrganizationURL == "" {
			p.OrganizationURL = str(org["url"])
		}
	}
	return p
}

// Command converts a posting found on pageURL into an ingestion command. The
// target's company name wins over the posting's hiring organization.
func (p Posting) Command(t Target, pageURL string) usecase.SaveJobCommand {
	company := t.CompanyName
	if company == "" {
		company = p.OrganizationName
	}
	website := t.CareerPageURL
	if website == "" {
		website = p.OrganizationURL
	}
	source := strings.TrimSpace(p.URL)
	if source == "" {
		source = pageURL
	}
	return usecase.SaveJobCommand{
		Title:                 p.Title,
		Description:           p.Description,
		Requirements:          p.Qualifications,
		Preferred:             p.Preferred,
		Location:              p.Location,
		JobType:               p.EmploymentType,
		ExperienceCategory:    p.ExperienceCategory,
		ExperienceRequirement: p.ExperienceRequirement,
		SourceURL:             source,
		CompanyName:           company,
		CompanyWebsite:        website,
		TechStackNames:        p.Skills,
		PostedAt:              p.DatePosted,
		ExpiresAt:             p.ValidThrough,
	}
}

var employmentTypes = map[string]string{
	"FULL_TIME":  "FULLTIME",
	"FULLTIME":   "FULLTIME",
	"PART_TIME":  "PARTTIME",
	"PARTTIME":   "PARTTIME",
	"CONTRACTOR": "CONTRACT",
	"CONTRACT":   "CONTRACT",
	"TEMPORARY":  "CONTRACT",
	"INTERN":     "INTERN",
	"INTERNSHIP": "INTERN",
}

// employmentType maps the first recognised schema.org value; unknown values
// leave the job type unset.
func employmentType(values []string) string {
	for _, v := range values {
		if t, ok := employmentTypes[strings.ToUpper(strings.TrimSpace(v))]; ok {
			return t
		}
	}
	return ""
}

// experience returns the free text requirement and, when months are given,
// the matching category.
func experience(v any) (string, string) {
	switch e := v.(type) {
	case string:
		return htmlText(e), ""
	case map[string]any:
		text := htmlText(str(e["description"]))
		months, ok := e["monthsOfExperience"].(float64)
		if !ok {
			return text, ""
		}
		return text, categoryForMonths(int(months))
	}
	return "", ""
}

func categoryForMonths(m int) string {
	switch {
	case m <= 0:
		return "ENTRY"
	case m < 36:
		return "JUNIOR"
	case m < 84:
		return "MID"
	case m < 120:
		return "SENIOR"
	default:
		return "LEAD"
	}
}

func location(v any) string {
	switch l := v.(type) {
	case []any:
		parts := []string{}
		for _, it := range l {
			if s := location(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " / ")
	case map[string]any:
		switch a := l["address"].(type) {
		case string:
			return strings.TrimSpace(a)
		case map[string]any:
			parts := []string{}
			for _, k := range []string{"addressLocality", "addressRegion", "addressCountry"} {
				if s := str(a[k]); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
		return str(l["name"])
	case string:
		return strings.TrimSpace(l)
	}
	return ""
}

// skills accepts either a list or a comma separated string.
func skills(v any) []string {
	raw := strs(v)
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// htmlText strips markup from a JSON-LD text field and collapses whitespace.
func htmlText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case map[string]any:
		if n, ok := s["name"].(string); ok {
			return strings.TrimSpace(n)
		}
	}
	return ""
}

func strs(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, it := range s {
			if x := str(it); x != "" {
				out = append(out, x)
			}
		}
		return out
	}
	return nil
}
