package handlers

import (
	"net/http"

	intconfig "muellepos/internal/config"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "backend de taquilla en línea"})
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "base de datos no conectada"})
		return
	}
	var count int
	err := intconfig.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM ventas").Scan(&count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo consultando la base de datos: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conexión a base de datos OK", "ventas_registradas": count})
}
