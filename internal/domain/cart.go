package domain

// CartItem pairs a course snapshot with a quantity.
type CartItem struct {
	Course   Course `json:"course"`
	Quantity int    `json:"quantity"`
}

// CartTotal sums price times quantity over the cart.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Course.Price * float64(item.Quantity)
	}
	return total
}
