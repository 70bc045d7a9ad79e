package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
	"github.com/prashanttechie/portfolio-project/pkg/view"
)

type EnrollmentsHandler struct {
	Repo *enrollments.Repo
}

func NewEnrollmentsHandler(repo *enrollments.Repo) *EnrollmentsHandler {
	return &EnrollmentsHandler{Repo: repo}
}

// GET /api/enrollments/:id/status
func (h *EnrollmentsHandler) Status(c *gin.Context) {
	id, ok := parseUint(c.Param("id"))
	if !ok {
		middleware.Fail(c, apperr.InvalidErr("Invalid enrollment id", map[string]string{"id": "Must be a positive integer."}))
		return
	}

	en, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, enrollments.ErrEnrollmentNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Enrollment not found"))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, view.EnrollmentStatusFrom(en))
}
