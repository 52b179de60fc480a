package controllers

import (
	"github.com/gin-gonic/gin"

	"ecommerce-api/apperrors"
)

// respondError writes the JSON error body for any service-layer error,
// mapping unknown errors to a masked 500.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.StatusOf(err), gin.H{"error": apperrors.MessageOf(err)})
}
