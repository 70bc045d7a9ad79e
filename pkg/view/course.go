package view

import (
	"time"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
)

type Course struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Duration    string    `json:"duration"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	Image       *string   `json:"image,omitempty"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
}

func CourseFrom(c courses.Course) Course {
	return Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price.StringFixed(2),
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    c.Category,
		Image:       c.Image,
		Featured:    c.Featured,
		Published:   c.Published,
		CreatedAt:   c.CreatedAt,
	}
}

func Courses(cs []courses.Course) []Course {
	out := make([]Course, 0, len(cs))
	for _, c := range cs {
		out = append(out, CourseFrom(c))
	}
	return out
}
