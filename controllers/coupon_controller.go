package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-api/services"
)

type CouponController struct {
	Coupons *services.CouponService
}

type createCouponRequest struct {
	Name      string    `json:"name" binding:"required,min=3,max=30"`
	Discount  float64   `json:"discount" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// Create handles POST /admin/coupons.
func (cc *CouponController) Create(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := cc.Coupons.Create(c.Request.Context(), req.Name, req.Discount, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

// List handles GET /admin/coupons.
func (cc *CouponController) List(c *gin.Context) {
	coupons, err := cc.Coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": len(coupons), "coupons": coupons})
}

// Deactivate handles DELETE /admin/coupons/:name.
func (cc *CouponController) Deactivate(c *gin.Context) {
	if err := cc.Coupons.Deactivate(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
