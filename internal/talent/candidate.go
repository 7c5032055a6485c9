package talent

import (
	"strings"
	"time"
)

// Availability values for a candidate.
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
	AvailabilityUnknown     = "unknown"
)

// RenownLevel classifies how widely known a candidate is.
type RenownLevel string

const (
	RenownHidden      RenownLevel = "hidden"
	RenownRising      RenownLevel = "rising"
	RenownEstablished RenownLevel = "established"
	RenownFamous      RenownLevel = "famous"
)

// Skill is a single skill on a candidate profile.
type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
	Years       int    `json:"years,omitempty"`
}

// Candidate is a searchable talent profile. Profiles are created by
// ingestion and are read-only from the matching pipeline's perspective,
// except for the match counter.
type Candidate struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Bio          string      `json:"bio"`
	Skills       []Skill     `json:"skills"`
	Availability string      `json:"availability"`
	RenownLevel  RenownLevel `json:"renown_level,omitempty"`
	Links        []string    `json:"links,omitempty"`
	Source       string      `json:"source,omitempty"`
	MatchCount   int         `json:"match_count"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HasSkill reports whether the candidate lists the named skill,
// matched case-insensitively on the exact name.
func (c Candidate) HasSkill(name string) bool {
	for _, s := range c.Skills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// SkillNames returns the candidate's skill names in profile order.
func (c Candidate) SkillNames() []string {
	names := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		names[i] = s.Name
	}
	return names
}

// ProfileText renders the profile as the text that gets embedded and
// indexed for similarity search.
func (c Candidate) ProfileText() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Title != "" {
		b.WriteString(" — ")
		b.WriteString(c.Title)
	}
	if len(c.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(c.SkillNames(), ", "))
	}
	if c.Bio != "" {
		b.WriteString("\n")
		b.WriteString(c.Bio)
	}
	return b.String()
}
