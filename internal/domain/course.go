package domain

import (
	"math"
	"strings"
)

// Category enumerates the catalog sections a course can be filed under.
type Category string

const (
	CategoryIndustrialAutomation  Category = "Industrial Automation"
	CategoryElectricalEngineering Category = "Electrical Engineering"
	CategoryIT                    Category = "IT"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryIndustrialAutomation, CategoryElectricalEngineering, CategoryIT:
		return true
	}
	return false
}

// Level enumerates course difficulty.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// CourseType distinguishes free courses from paid ones.
type CourseType string

const (
	CourseTypeFree CourseType = "Free"
	CourseTypePro  CourseType = "Pro"
)

// Valid reports whether t is a known course type.
func (t CourseType) Valid() bool {
	return t == CourseTypeFree || t == CourseTypePro
}

// Lesson is the leaf content unit of a course.
type Lesson struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	VideoURL   string `json:"video_url" yaml:"video_url"`
	Transcript string `json:"transcript" yaml:"transcript"`
}

// Module is an ordered group of lessons.
type Module struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Lessons []Lesson `json:"lessons" yaml:"lessons"`
}

// Course is a catalog entry. Progress is only set on owned copies.
type Course struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Category    Category   `json:"category" yaml:"category"`
	Level       Level      `json:"level" yaml:"level"`
	Type        CourseType `json:"type" yaml:"type"`
	Instructor  string     `json:"instructor" yaml:"instructor"`
	Description string     `json:"description" yaml:"description"`
	Price       float64    `json:"price" yaml:"price"`
	Rating      float64    `json:"rating" yaml:"rating"`
	ImageURL    string     `json:"image_url" yaml:"image_url"`
	Progress    *int       `json:"progress,omitempty" yaml:"progress,omitempty"`
	Modules     []Module   `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// IsFree reports whether the course can be enrolled in without checkout.
func (c Course) IsFree() bool {
	return c.Type == CourseTypeFree
}

// Clone returns a deep copy so snapshots never share backing arrays.
func (c Course) Clone() Course {
	out := c
	if c.Progress != nil {
		p := *c.Progress
		out.Progress = &p
	}
	if c.Modules != nil {
		out.Modules = make([]Module, len(c.Modules))
		for i, m := range c.Modules {
			out.Modules[i] = Module{ID: m.ID, Title: m.Title, Lessons: append([]Lesson(nil), m.Lessons...)}
		}
	}
	return out
}

// WithProgress returns an owned copy of the course stamped with progress.
func (c Course) WithProgress(progress int) Course {
	out := c.Clone()
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	out.Progress = &progress
	return out
}

// LearningStats summarizes a learner's owned courses.
type LearningStats struct {
	Enrolled        int `json:"enrolled"`
	AverageProgress int `json:"average_progress"`
}

// SummarizeLearning counts owned courses and rounds their mean progress to a
// whole percent. Courses without progress count as 0; no courses gives 0.
func SummarizeLearning(owned []Course) LearningStats {
	stats := LearningStats{Enrolled: len(owned)}
	if len(owned) == 0 {
		return stats
	}
	sum := 0
	for _, c := range owned {
		if c.Progress != nil {
			sum += *c.Progress
		}
	}
	stats.AverageProgress = int(math.Round(float64(sum) / float64(len(owned))))
	return stats
}

// CourseDraft is an admin-authored course before it is assigned an id and a rating.
type CourseDraft struct {
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Level       Level      `json:"level"`
	Type        CourseType `json:"type"`
	Instructor  string     `json:"instructor"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	ImageURL    string     `json:"image_url"`
	Modules     []Module   `json:"modules,omitempty"`
}

// Normalize trims text fields and forces a zero price on free courses.
func (d CourseDraft) Normalize() CourseDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Instructor = strings.TrimSpace(d.Instructor)
	d.Description = strings.TrimSpace(d.Description)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	if d.Type == CourseTypeFree || d.Price < 0 {
		d.Price = 0
	}
	return d
}

// Validate checks the enumerated fields of a draft.
func (d CourseDraft) Validate() error {
	if d.Title == "" {
		return ErrInvalidCourse
	}
	if !d.Category.Valid() || !d.Level.Valid() || !d.Type.Valid() {
		return ErrInvalidCourse
	}
	if d.Price < 0 {
		return ErrInvalidCourse
	}
	return nil
}

// Course builds a catalog course from the draft.
func (d CourseDraft) Course(id int64, rating float64) Course {
	d = d.Normalize()
	c := Course{
		ID:          id,
		Title:       d.Title,
		Category:    d.Category,
		Level:       d.Level,
		Type:        d.Type,
		Instructor:  d.Instructor,
		Description: d.Description,
		Price:       d.Price,
		Rating:      rating,
		ImageURL:    d.ImageURL,
		Modules:     d.Modules,
	}
	return c.Clone()
}

// Draft strips identity and rating from a course.
func (c Course) Draft() CourseDraft {
	return CourseDraft{
		Title:       c.Title,
		Category:    c.Category,
		Level:       c.Level,
		Type:        c.Type,
		Instructor:  c.Instructor,
		Description: c.Description,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
		Modules:     c.Modules,
	}
}
