package handlers

import (
	"net/http"

	"muellepos/internal/domain"
	"muellepos/internal/http/middleware"
	"muellepos/internal/services"

	"github.com/gin-gonic/gin"
)

// PosHandlers serves the point-of-sale surface. Each operator works on their
// session's single active ticket.
type PosHandlers struct {
	Sessions *services.SessionStore
	QR       services.QRService
}

func (h PosHandlers) controller(c *gin.Context) *services.TicketController {
	return h.Sessions.Controller(middleware.GetOperator(c))
}

// ticketResponse is the common success envelope of the POS endpoints.
func ticketResponse(ticket domain.Ticket) gin.H {
	return gin.H{
		"ticket":           ticket,
		"price_per_adult":  ticket.Quote.PerAdult(ticket.Passengers.Adults),
		"total_passengers": ticket.Passengers.Total(),
	}
}

// GET /api/pos/ticket
func (h PosHandlers) GetTicket(c *gin.Context) {
	c.JSON(http.StatusOK, ticketResponse(h.controller(c).Snapshot()))
}

// PUT /api/pos/ticket
func (h PosHandlers) UpdateTicket(c *gin.Context) {
	var edits services.FieldEdits
	if !BindJSONOrError(c, &edits) {
		return
	}
	ticket, err := h.controller(c).Apply(edits)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticketResponse(ticket))
}

// POST /api/pos/ticket/generate
func (h PosHandlers) GenerateTicket(c *gin.Context) {
	ctrl := h.controller(c)
	ticket, err := ctrl.Generate(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	resp := ticketResponse(ticket)
	resp["sale_id"] = ctrl.LastSaleID()
	c.JSON(http.StatusOK, resp)
}

// POST /api/pos/ticket/print
func (h PosHandlers) PrintTicket(c *gin.Context) {
	ticket, err := h.controller(c).Print(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticketResponse(ticket))
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

func confirmFrom(c *gin.Context) func() bool {
	var req confirmRequest
	if c.Request.Body != nil {
		_ = c.ShouldBindJSON(&req)
	}
	return func() bool { return req.Confirm }
}

// POST /api/pos/ticket/cancel
func (h PosHandlers) CancelTicket(c *gin.Context) {
	ticket, err := h.controller(c).Cancel(c.Request.Context(), confirmFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticketResponse(ticket))
}

// POST /api/pos/ticket/reset
func (h PosHandlers) ResetTicket(c *gin.Context) {
	ticket, err := h.controller(c).Reset(confirmFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticketResponse(ticket))
}

// GET /api/pos/ticket/qr
func (h PosHandlers) TicketQR(c *gin.Context) {
	payload := h.controller(c).QRPayload()
	data, err := h.QR.Encode(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payload": payload,
		"text":    string(data),
	})
}

// GET /api/pos/ticket/qr.jpg
func (h PosHandlers) TicketQRImage(c *gin.Context) {
	payload := h.controller(c).QRPayload()
	img, err := h.QR.Image(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", img)
}

// GET /api/pos/ticket/pdf?format=thermal|standard|compact
func (h PosHandlers) TicketPDF(c *gin.Context) {
	format, ok := services.ParsePDFFormat(c.Query("format"))
	if !ok {
		RespondDomainError(c, domain.ValidationError{Fields: []string{"format"}})
		return
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	data, filename, err := docs.TicketPDF(h.controller(c).Snapshot(), format)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// GET /api/pos/ticket/escpos
func (h PosHandlers) TicketESCPOS(c *gin.Context) {
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	data, err := docs.TicketESCPOS(h.controller(c).Snapshot())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}
