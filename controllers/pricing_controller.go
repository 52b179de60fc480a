package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-api/repository"
)

type PricingController struct {
	Store repository.Store
}

// Get handles GET /admin/pricing-settings.
func (pc *PricingController) Get(c *gin.Context) {
	settings, err := pc.Store.Pricing().Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pricing_settings": settings})
}

type updatePricingRequest struct {
	TaxPercentage float64 `json:"tax_percentage" binding:"min=0,max=100"`
	ShippingPrice float64 `json:"shipping_price" binding:"min=0"`
}

// Update handles PUT /admin/pricing-settings.
func (pc *PricingController) Update(c *gin.Context) {
	var req updatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := pc.Store.Pricing().Update(c.Request.Context(), req.TaxPercentage, req.ShippingPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pricing_settings": settings})
}
