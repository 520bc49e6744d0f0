// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Collection names in the document store.
const (
	CollectionEvents        = "events"
	CollectionResults       = "results"
	CollectionRegistrations = "registrations"
	CollectionGallery       = "gallery"
	CollectionAnnouncements = "announcements"
	CollectionSettings      = "settings"
)

// Placing is a finishing position.
type Placing string

// Placings. PlacingNone is a graded entry without a podium finish.
const (
	PlacingNone   Placing = ""
	PlacingFirst  Placing = "first"
	PlacingSecond Placing = "second"
	PlacingThird  Placing = "third"
)

// ParsePlacing accepts "first", "1", "1st" and friends, case-insensitively.
// Empty, "none" and "-" map to PlacingNone.
func ParsePlacing(s string) (Placing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "-":
		return PlacingNone, nil
	case "first", "1", "1st":
		return PlacingFirst, nil
	case "second", "2", "2nd":
		return PlacingSecond, nil
	case "third", "3", "3rd":
		return PlacingThird, nil
	}
	return PlacingNone, fmt.Errorf("%w: placing %q", ErrInvalidValue, s)
}

// Category is an event tier.
type Category string

// Categories.
const (
	CategoryNone Category = ""
	CategoryA    Category = "A"
	CategoryB    Category = "B"
	CategoryC    Category = "C"
)

// ParseCategory accepts A, B, C or empty, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryNone, CategoryA, CategoryB, CategoryC:
		return c, nil
	}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return CategoryNone, nil
	}
	return CategoryNone, fmt.Errorf("%w: category %q", ErrInvalidValue, s)
}

// Grade is a qualitative rating awarded independent of placing.
type Grade string

// Grades.
const (
	GradeNone  Grade = ""
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
)

// ParseGrade accepts A+, A, B, C or empty, case-insensitively.
func ParseGrade(s string) (Grade, error) {
	switch g := Grade(strings.ToUpper(strings.ReplaceAll(s, " ", ""))); g {
	case GradeNone, GradeAPlus, GradeA, GradeB, GradeC:
		return g, nil
	}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return GradeNone, nil
	}
	return GradeNone, fmt.Errorf("%w: grade %q", ErrInvalidValue, s)
}

// Placement is one event result for a student or, for general events, a team.
// Points is derived and recomputed on every save.
type Placement struct {
	ID          string    `json:"id"`
	EventName   string    `json:"eventName"`
	Placing     Placing   `json:"placing"`
	Category    Category  `json:"category"`
	Grade       Grade     `json:"grade"`
	StudentName string    `json:"studentName"`
	ChestNumber string    `json:"chestNumber"`
	Team        string    `json:"team"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
