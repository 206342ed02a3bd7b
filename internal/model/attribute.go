package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Rating is a stored social-representation score for one movie.
type Rating struct {
	MovieID int64 `json:"movie_id"`
	Score   int   `json:"score"`
	Dubious bool  `json:"dubious"`
}

// MaxRatingScore is the highest score the rating catalog awards.
const MaxRatingScore = 3

// ExternalRating is a rating as returned by the rating catalog. Score is nil
// when the catalog knows the movie but has not rated it.
type ExternalRating struct {
	Score   *int   `json:"score,omitempty"`
	Dubious bool   `json:"dubious"`
	Title   string `json:"title"`
}

// Gender is the metadata catalog's gender code for a person.
type Gender int

const (
	GenderUnknown   Gender = 0
	GenderFemale    Gender = 1
	GenderMale      Gender = 2
	GenderNonBinary Gender = 3
)

// String returns a readable label. Codes outside the known set render as
// "unknown(N)" so they stay distinguishable from GenderUnknown.
func (g Gender) String() string {
	switch g {
	case GenderUnknown:
		return "unknown"
	case GenderFemale:
		return "female"
	case GenderMale:
		return "male"
	case GenderNonBinary:
		return "non-binary"
	default:
		return fmt.Sprintf("unknown(%d)", int(g))
	}
}

// RoleKind identifies a crew role with its own attribute table.
type RoleKind string

const (
	RoleDirector RoleKind = "director"
	RoleComposer RoleKind = "composer"
)

// Table returns the storage table for the role. The set is closed, so the
// result is safe to interpolate into SQL.
func (r RoleKind) Table() string {
	switch r {
	case RoleDirector:
		return "directors"
	case RoleComposer:
		return "composers"
	default:
		return ""
	}
}

// ParseRoleKind accepts a role name in singular or table form.
func ParseRoleKind(s string) (RoleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "director", "directors":
		return RoleDirector, nil
	case "composer", "composers":
		return RoleComposer, nil
	default:
		return "", eris.Errorf("model: unknown crew role %q", s)
	}
}

// CrewCredit is one crew entry from a movie's credits listing.
type CrewCredit struct {
	Name   string `json:"name"`
	Job    string `json:"job"`
	Gender Gender `json:"gender"`
}

// CrewRecord is a stored crew attribute for one movie and role.
type CrewRecord struct {
	MovieID    int64    `json:"movie_id"`
	Role       RoleKind `json:"role"`
	PersonName string   `json:"person_name"`
	Job        string   `json:"job"`
	Gender     Gender   `json:"gender"`
}
