package exchange

import "math"

// QuantizeQty floors a quantity to the symbol's lot step. A zero step passes
// the quantity through unchanged.
func QuantizeQty(qty, step float64) float64 {
	if step <= 0 {
		return qty
	}
	return math.Floor(qty/step) * step
}

// QuantizePrice floors a price to the symbol's tick size.
func QuantizePrice(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Floor(price/tick) * tick
}
