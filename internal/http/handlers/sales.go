package handlers

import (
	"net/http"
	"strings"

	"muellepos/internal/domain"
	"muellepos/internal/services"
	"muellepos/internal/utils"

	"github.com/gin-gonic/gin"
)

// SalesHandlers serves lookups over persisted sales.
type SalesHandlers struct {
	Bridge  *services.SaleBridge
	Reports services.ReportService
}

// GET /api/sales/:code
func (h SalesHandlers) GetSale(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		RespondDomainError(c, domain.ValidationError{Fields: []string{"codigo"}})
		return
	}
	rec, err := h.Bridge.FindByCode(c.Request.Context(), code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": rec})
}

// GET /api/reports/daily?date=YYYY-MM-DD (defaults to today)
func (h SalesHandlers) DailyReport(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = utils.Today()
	}
	report, err := h.Reports.Daily(c.Request.Context(), date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
