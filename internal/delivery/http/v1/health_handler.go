package v1

import (
	"net/http"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// NewHealthHandler answers 200 even when a dependency is down; the body names it.
func NewHealthHandler(public *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	public.GET("/health", func(c *gin.Context) {
		status := healthUC.Check(c.Request.Context())
		message := "System operational"
		if status["status"] != "ok" {
			message = "System degraded"
		}
		response.Success(c, http.StatusOK, message, status)
	})
}
