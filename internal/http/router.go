package api

import (
	"log"
	stdhttp "net/http"

	intconfig "muellepos/internal/config"
	h "muellepos/internal/http/handlers"
	"muellepos/internal/http/middleware"
	"muellepos/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the wired services the routes need.
type Deps struct {
	Env      intconfig.Env
	Sessions *services.SessionStore
	Bridge   *services.SaleBridge
	Reports  services.ReportService
}

func NewRouter(d Deps) *gin.Engine {
	h.SetJWTSecret([]byte(d.Env.JWTSecret))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "ruta no encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	pos := h.PosHandlers{Sessions: d.Sessions}
	sales := h.SalesHandlers{Bridge: d.Bridge, Reports: d.Reports}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", h.Health)
		apiGroup.GET("/db-check", h.DBCheck)

		auth := apiGroup.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		protected := apiGroup.Group("")
		protected.Use(middleware.RequireAuth([]byte(d.Env.JWTSecret)))
		{
			ticket := protected.Group("/pos/ticket")
			ticket.GET("", pos.GetTicket)
			ticket.PUT("", pos.UpdateTicket)
			ticket.POST("/generate", pos.GenerateTicket)
			ticket.POST("/print", pos.PrintTicket)
			ticket.POST("/cancel", pos.CancelTicket)
			ticket.POST("/reset", pos.ResetTicket)
			ticket.GET("/qr", pos.TicketQR)
			ticket.GET("/qr.jpg", pos.TicketQRImage)
			ticket.GET("/pdf", pos.TicketPDF)
			ticket.GET("/escpos", pos.TicketESCPOS)

			protected.GET("/sales/:code", sales.GetSale)
			protected.GET("/reports/daily", sales.DailyReport)
		}
	}

	return r
}
