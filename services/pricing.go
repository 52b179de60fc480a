package services

// OrderTotal derives the tax amount and the final order price from a cart
// subtotal. The caller passes the discounted subtotal when a coupon is
// applied; this function has no other branch.
func OrderTotal(subtotal, taxPercentage, shippingPrice float64) (taxAmount, total float64) {
	taxAmount = subtotal * taxPercentage / 100
	total = subtotal + taxAmount + shippingPrice
	return taxAmount, total
}
