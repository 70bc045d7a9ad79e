package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

// Recovery logs the stack as a structured field instead of writing it to stderr.
func Recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := debug.Stack()
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(stack)),
		)

		// ErrorHandler runs inside the panicking chain, so respond here
		err := apperr.Wrap(fmt.Errorf("panic: %v", recovered))
		_ = c.Error(err)
		c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
			"error":      apperr.PublicMessage(err),
			"request_id": GetRequestID(c),
		})
	})
}
