package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/http/validation"
	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/pkg/view"
)

type CoursesHandler struct {
	Svc *courses.Service
}

func NewCoursesHandler(svc *courses.Service) *CoursesHandler {
	validation.InstallGin()
	return &CoursesHandler{Svc: svc}
}

// GET /api/courses?category=
func (h *CoursesHandler) List(c *gin.Context) {
	list, err := h.Svc.ListPublished(c.Request.Context(), c.Query("category"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": view.Courses(list)})
}

type createCourseRequest struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"amount"`
	Duration    string          `json:"duration" binding:"max=64"`
	Level       string          `json:"level" binding:"omitempty,course_level"`
	Category    string          `json:"category" binding:"max=64"`
	Image       string          `json:"image" binding:"omitempty,url"`
	Featured    bool            `json:"featured"`
}

// POST /api/courses (admin)
func (h *CoursesHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := bindJSON(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	course, err := h.Svc.Create(c.Request.Context(), courses.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Level:       req.Level,
		Category:    req.Category,
		Image:       req.Image,
		Featured:    req.Featured,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view.CourseFrom(course))
}
