package entity

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
)

// MaterialKind is the closed set of material sources.
type MaterialKind string

const (
	MaterialFile    MaterialKind = "file"
	MaterialYouTube MaterialKind = "youtube"
	MaterialDrive   MaterialKind = "drive"
	MaterialOther   MaterialKind = "other"
)

func (k MaterialKind) Valid() bool {
	switch k {
	case MaterialFile, MaterialYouTube, MaterialDrive, MaterialOther:
		return true
	default:
		return false
	}
}

// Material is a value object living inside Course.Materials; slice order is
// display order.
type Material struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      MaterialKind `json:"kind"`
	URL       string       `json:"url"`
	SizeBytes int64        `json:"size_bytes"`
}

// MaxPrice is the exclusive upper bound of Course.Price; the courses table
// stores prices as NUMERIC(12, 2).
const MaxPrice = 1e10

// wholeCents reports whether the shortest decimal form of p has at most two
// fractional digits.
func wholeCents(p float64) bool {
	_, frac, ok := strings.Cut(strconv.FormatFloat(p, 'f', -1, 64), ".")
	return !ok || len(frac) <= 2
}

// Course is owned exclusively by InstructorID.
// EnrolledStudentIDs is a set; storage guarantees each id appears once.
type Course struct {
	ID                 string
	Title              string
	Description        string
	Price              float64
	Tags               []string
	DurationLabel      string
	LessonCount        int
	ThumbnailRef       string
	Materials          []Material
	InstructorID       string
	EnrolledStudentIDs []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (c *Course) IsEnrolled(studentID string) bool {
	return slices.Contains(c.EnrolledStudentIDs, studentID)
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	cp.Materials = slices.Clone(c.Materials)
	cp.EnrolledStudentIDs = slices.Clone(c.EnrolledStudentIDs)
	return &cp
}

// Validate checks the field ranges every stored course must satisfy.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return apperr.New(apperr.KindInvalidInput, "title is required")
	}
	if c.Price < 0 || math.IsNaN(c.Price) || math.IsInf(c.Price, 0) {
		return apperr.New(apperr.KindInvalidInput, "price must be a number >= 0")
	}
	if c.Price >= MaxPrice {
		return apperr.New(apperr.KindInvalidInput, "price must be < 10000000000")
	}
	if !wholeCents(c.Price) {
		return apperr.New(apperr.KindInvalidInput, "price must have at most 2 decimal places")
	}
	if c.LessonCount < 0 {
		return apperr.New(apperr.KindInvalidInput, "lesson_count must be >= 0")
	}
	for i, m := range c.Materials {
		if !m.Kind.Valid() {
			return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("materials[%d].kind must be one of file, youtube, drive, other", i))
		}
		if m.SizeBytes < 0 {
			return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("materials[%d].size_bytes must be >= 0", i))
		}
	}
	return nil
}

// CoursePatch is the closed set of mutable course fields. Nil means "leave
// untouched".
type CoursePatch struct {
	Title         *string
	Description   *string
	Price         *float64
	Tags          *[]string
	DurationLabel *string
	LessonCount   *int
	ThumbnailRef  *string
	Materials     *[]Material
}

func (p CoursePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Tags == nil &&
		p.DurationLabel == nil && p.LessonCount == nil && p.ThumbnailRef == nil && p.Materials == nil
}

// Apply writes the present fields onto c.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Tags != nil {
		c.Tags = slices.Clone(*p.Tags)
	}
	if p.DurationLabel != nil {
		c.DurationLabel = *p.DurationLabel
	}
	if p.LessonCount != nil {
		c.LessonCount = *p.LessonCount
	}
	if p.ThumbnailRef != nil {
		c.ThumbnailRef = *p.ThumbnailRef
	}
	if p.Materials != nil {
		c.Materials = slices.Clone(*p.Materials)
	}
}
