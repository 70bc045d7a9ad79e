package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
	"github.com/prashanttechie/portfolio-project/pkg/view"
)

type PaymentsHandler struct {
	Ledger *payments.Ledger
}

func NewPaymentsHandler(ledger *payments.Ledger) *PaymentsHandler {
	return &PaymentsHandler{Ledger: ledger}
}

// GET /api/payments?status=&limit=
func (h *PaymentsHandler) List(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid limit", map[string]string{"limit": "Must be an integer."}))
			return
		}
		limit = n
	}

	res, err := h.Ledger.List(c.Request.Context(), payments.LedgerParams{
		Status: c.Query("status"),
		Limit:  limit,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, view.LedgerFrom(res))
}
