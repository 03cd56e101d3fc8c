package job

import (
	"fmt"
	"strings"
	"time"
)

var experienceCategoryLabels = map[ExperienceCategory]string{
	ExperienceEntry:  "Entry level",
	ExperienceJunior: "Junior",
	ExperienceMid:    "Mid level",
	ExperienceSenior: "Senior",
	ExperienceLead:   "Lead / Principal",
	ExperienceAny:    "Any experience",
}

// experienceSummaries is shown in listings when a posting carries no free-text
// experience requirement.
var experienceSummaries = map[ExperienceCategory]string{
	ExperienceEntry:  "New graduate",
	ExperienceJunior: "1-3 years",
	ExperienceMid:    "3-7 years",
	ExperienceSenior: "7+ years",
	ExperienceLead:   "10+ years",
	ExperienceAny:    "Any experience",
}

var techStackCategoryLabels = map[TechStackCategory]string{
	TechLanguage:  "Programming Language",
	TechFramework: "Framework",
	TechDatabase:  "Database",
	TechTool:      "Development Tool",
	TechCloud:     "Cloud Platform",
	TechOther:     "Other",
}

var jobTypeLabels = map[JobType]string{
	JobTypeFullTime: "Full-time",
	JobTypeContract: "Contract",
	JobTypeIntern:   "Internship",
	JobTypePartTime: "Part-time",
}

// legacyExperienceLevels maps the deprecated experience_level values sent by
// older crawler builds onto categories.
var legacyExperienceLevels = map[string]ExperienceCategory{
	"ENTRY":  ExperienceEntry,
	"NEWBIE": ExperienceEntry,
	"JUNIOR": ExperienceJunior,
	"MID":    ExperienceMid,
	"SENIOR": ExperienceSenior,
	"LEAD":   ExperienceLead,
	"ANY":    ExperienceAny,
}

func (c ExperienceCategory) DisplayName() string {
	return experienceCategoryLabels[c]
}

func (c TechStackCategory) DisplayName() string {
	return techStackCategoryLabels[c]
}

func (t JobType) DisplayName() string {
	return jobTypeLabels[t]
}

// ResolveExperienceCategory prefers an explicit category and falls back to the
// legacy level. Both empty yields an unset category.
func ResolveExperienceCategory(category, legacyLevel string) (ExperienceCategory, error) {
	if strings.TrimSpace(category) != "" {
		return ParseExperienceCategory(category)
	}
	legacyLevel = strings.ToUpper(strings.TrimSpace(legacyLevel))
	if legacyLevel == "" {
		return "", nil
	}
	c, ok := legacyExperienceLevels[legacyLevel]
	if !ok {
		return "", fmt.Errorf("%w: unknown experience level %q", ErrInvalidJob, legacyLevel)
	}
	return c, nil
}

// ExperienceText is the human readable experience line of a posting.
func (j Job) ExperienceText() string {
	if s := strings.TrimSpace(j.ExperienceRequirement); s != "" {
		return s
	}
	return experienceSummaries[j.EffectiveExperienceCategory()]
}

// DeadlineText renders the expiry as "~2006.01.02", or "Open" for open-ended postings.
func (j Job) DeadlineText() string {
	if j.ExpiresAt == nil {
		return "Open"
	}
	return j.ExpiresAt.In(time.UTC).Format("~2006.01.02")
}

// CompanyInitial is the placeholder logo used when a company has no logo URL.
func (c Company) CompanyInitial() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "?"
	}
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
