package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/http/validation"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

// bindJSON binds the body into dst and converts failures to a 400 with per-field messages.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.InvalidErr("Invalid request body", validation.FromBindError(err, dst))
	}
	return nil
}

func parseUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
