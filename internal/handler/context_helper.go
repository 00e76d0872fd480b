package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/middleware"
	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) (service.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}, false
	}
	return service.Actor{
		ID:        claims.UserID,
		Role:      claims.Role,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, true
}
