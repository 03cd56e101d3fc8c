package job

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 300
	MaxSourceURLLength   = 1000
	MaxCompanyNameLength = 100
	MaxTechStackLength   = 50
)

type JobType string

const (
	JobTypeFullTime JobType = "FULLTIME"
	JobTypeContract JobType = "CONTRACT"
	JobTypeIntern   JobType = "INTERN"
	JobTypePartTime JobType = "PARTTIME"
)

func ParseJobType(s string) (JobType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	t := JobType(s)
	if _, ok := jobTypeLabels[t]; !ok {
		return "", fmt.Errorf("%w: unknown job type %q", ErrInvalidJob, s)
	}
	return t, nil
}

type ExperienceCategory string

const (
	ExperienceEntry  ExperienceCategory = "ENTRY"
	ExperienceJunior ExperienceCategory = "JUNIOR"
	ExperienceMid    ExperienceCategory = "MID"
	ExperienceSenior ExperienceCategory = "SENIOR"
	ExperienceLead   ExperienceCategory = "LEAD"
	ExperienceAny    ExperienceCategory = "ANY"
)

// ExperienceCategories lists every category in seniority order, ANY last.
var ExperienceCategories = []ExperienceCategory{
	ExperienceEntry,
	ExperienceJunior,
	ExperienceMid,
	ExperienceSenior,
	ExperienceLead,
	ExperienceAny,
}

func ParseExperienceCategory(s string) (ExperienceCategory, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	c := ExperienceCategory(s)
	if c.Rank() < 0 {
		return "", fmt.Errorf("%w: unknown experience category %q", ErrInvalidJob, s)
	}
	return c, nil
}

// Rank returns the seniority position of the category, or -1 when unknown.
func (c ExperienceCategory) Rank() int {
	for i, it := range ExperienceCategories {
		if it == c {
			return i
		}
	}
	return -1
}

type TechStackCategory string

const (
	TechLanguage  TechStackCategory = "LANGUAGE"
	TechFramework TechStackCategory = "FRAMEWORK"
	TechDatabase  TechStackCategory = "DATABASE"
	TechTool      TechStackCategory = "TOOL"
	TechCloud     TechStackCategory = "CLOUD"
	TechOther     TechStackCategory = "OTHER"
)

func ParseTechStackCategory(s string) (TechStackCategory, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	c := TechStackCategory(s)
	if _, ok := techStackCategoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: unknown tech stack category %q", ErrInvalidJob, s)
	}
	return c, nil
}

type Company struct {
	ID            int64
	Name          string
	NameEn        string
	CareerPageURL string
	LogoURL       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewCompany(name, nameEn, careerPageURL, logoURL string) (Company, error) {
	if err := validateCompanyName(name); err != nil {
		return Company{}, err
	}
	now := time.Now().UTC()
	return Company{
		Name:          strings.TrimSpace(name),
		NameEn:        nameEn,
		CareerPageURL: careerPageURL,
		LogoURL:       logoURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (c Company) Equal(o Company) bool {
	return c.ID == o.ID && c.Name == o.Name
}

func (c Company) WithInfo(nameEn, careerPageURL, logoURL string) Company {
	c.NameEn = nameEn
	c.CareerPageURL = careerPageURL
	c.LogoURL = logoURL
	c.UpdatedAt = time.Now().UTC()
	return c
}

func validateCompanyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: company name cannot be empty", ErrInvalidJob)
	}
	if utf8.RuneCountInString(name) > MaxCompanyNameLength {
		return fmt.Errorf("%w: company name cannot exceed %d characters", ErrInvalidJob, MaxCompanyNameLength)
	}
	return nil
}

type TechStack struct {
	ID       int64
	Name     string
	Category TechStackCategory
}

// TechStackKey is the identity of a tech stack: the same name under two
// categories is two different skills.
type TechStackKey struct {
	Name     string
	Category TechStackCategory
}

func NewTechStack(name string, category TechStackCategory) (TechStack, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TechStack{}, fmt.Errorf("%w: tech stack name cannot be empty", ErrInvalidJob)
	}
	if utf8.RuneCountInString(name) > MaxTechStackLength {
		return TechStack{}, fmt.Errorf("%w: tech stack name cannot exceed %d characters", ErrInvalidJob, MaxTechStackLength)
	}
	if _, ok := techStackCategoryLabels[category]; !ok {
		return TechStack{}, fmt.Errorf("%w: tech stack category cannot be empty", ErrInvalidJob)
	}
	return TechStack{Name: name, Category: category}, nil
}

func (t TechStack) Key() TechStackKey {
	return TechStackKey{Name: t.Name, Category: t.Category}
}

func (t TechStack) Equal(o TechStack) bool {
	return t.Key() == o.Key()
}

type Job struct {
	ID                    int64
	Company               Company
	Title                 string
	Description           string
	Requirements          string
	Preferred             string
	JobType               JobType
	ExperienceRequirement string
	ExperienceCategory    ExperienceCategory
	Location              string
	SourceURL             string
	PostedAt              *time.Time
	ExpiresAt             *time.Time
	Active                bool
	RequiredTechStacks    []TechStack
	PreferredTechStacks   []TechStack
	CrawledAt             time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Details groups the optional fields set after a job is created.
type Details struct {
	Requirements          string
	Preferred             string
	JobType               JobType
	ExperienceRequirement string
	ExperienceCategory    ExperienceCategory
	Location              string
	PostedAt              *time.Time
	ExpiresAt             *time.Time
}

func NewJob(company Company, title, description, sourceURL string) (Job, error) {
	if err := validateCompanyName(company.Name); err != nil {
		return Job{}, err
	}
	if err := validateTitle(title); err != nil {
		return Job{}, err
	}
	if err := validateSourceURL(sourceURL); err != nil {
		return Job{}, err
	}

	now := time.Now().UTC()
	return Job{
		Company:     company,
		Title:       title,
		Description: description,
		SourceURL:   sourceURL,
		Active:      true,
		CrawledAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (j Job) clone() Job {
	j.RequiredTechStacks = append([]TechStack(nil), j.RequiredTechStacks...)
	j.PreferredTechStacks = append([]TechStack(nil), j.PreferredTechStacks...)
	if j.PostedAt != nil {
		t := *j.PostedAt
		j.PostedAt = &t
	}
	if j.ExpiresAt != nil {
		t := *j.ExpiresAt
		j.ExpiresAt = &t
	}
	return j
}

func (j Job) WithDetails(d Details) Job {
	out := j.clone()
	out.Requirements = d.Requirements
	out.Preferred = d.Preferred
	out.JobType = d.JobType
	out.ExperienceRequirement = d.ExperienceRequirement
	out.ExperienceCategory = d.ExperienceCategory
	out.Location = d.Location
	out.PostedAt = copyTime(d.PostedAt)
	out.ExpiresAt = copyTime(d.ExpiresAt)
	out.UpdatedAt = time.Now().UTC()
	return out
}

func (j Job) AddRequiredTechStack(t TechStack) Job {
	out := j.clone()
	out.RequiredTechStacks = addTechStack(out.RequiredTechStacks, t)
	out.UpdatedAt = time.Now().UTC()
	return out
}

func (j Job) AddPreferredTechStack(t TechStack) Job {
	out := j.clone()
	out.PreferredTechStacks = addTechStack(out.PreferredTechStacks, t)
	out.UpdatedAt = time.Now().UTC()
	return out
}

func (j Job) Deactivate() Job {
	out := j.clone()
	out.Active = false
	out.UpdatedAt = time.Now().UTC()
	return out
}

// Equal compares postings by their source URL, the natural business key.
func (j Job) Equal(o Job) bool {
	return j.SourceURL == o.SourceURL
}

// IsExpired reports whether the posting has a deadline strictly before now.
// Postings without a deadline never expire.
func (j Job) IsExpired(now time.Time) bool {
	return j.ExpiresAt != nil && j.ExpiresAt.Before(now)
}

func (j Job) EffectiveExperienceCategory() ExperienceCategory {
	if j.ExperienceCategory == "" {
		return ExperienceAny
	}
	return j.ExperienceCategory
}

// TechStackIDs returns the ids of required and preferred stacks, each once.
func (j Job) TechStackIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(j.RequiredTechStacks)+len(j.PreferredTechStacks))
	for _, t := range j.RequiredTechStacks {
		out[t.ID] = struct{}{}
	}
	for _, t := range j.PreferredTechStacks {
		out[t.ID] = struct{}{}
	}
	return out
}

// SkillNames returns required then preferred stack names without duplicates.
func (j Job) SkillNames() []string {
	out := make([]string, 0, len(j.RequiredTechStacks)+len(j.PreferredTechStacks))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]TechStack{j.RequiredTechStacks, j.PreferredTechStacks} {
		for _, t := range list {
			if _, ok := seen[t.Name]; ok {
				continue
			}
			seen[t.Name] = struct{}{}
			out = append(out, t.Name)
		}
	}
	return out
}

func addTechStack(list []TechStack, t TechStack) []TechStack {
	for _, it := range list {
		if it.Equal(t) {
			return list
		}
	}
	return append(list, t)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: job title cannot be empty", ErrInvalidJob)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: job title cannot exceed %d characters", ErrInvalidJob, MaxTitleLength)
	}
	return nil
}

func validateSourceURL(u string) error {
	if strings.TrimSpace(u) == "" {
		return fmt.Errorf("%w: source url cannot be empty", ErrInvalidJob)
	}
	if utf8.RuneCountInString(u) > MaxSourceURLLength {
		return fmt.Errorf("%w: source url cannot exceed %d characters", ErrInvalidJob, MaxSourceURLLength)
	}
	return nil
}
