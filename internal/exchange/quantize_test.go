package exchange

import (
	"math"
	"testing"
)

func TestQuantizeQty(t *testing.T) {
	if got := QuantizeQty(0.123456, 0.001); math.Abs(got-0.123) > 1e-12 {
		t.Fatalf("expected 0.123, got %.6f", got)
	}
	if got := QuantizeQty(0.5, 0); got != 0.5 {
		t.Fatalf("zero step should pass through, got %.6f", got)
	}
	if got := QuantizeQty(0.0009, 0.001); got != 0 {
		t.Fatalf("sub-step quantity should floor to zero, got %.6f", got)
	}
}

func TestQuantizePrice(t *testing.T) {
	if got := QuantizePrice(50123.456, 0.01); math.Abs(got-50123.45) > 1e-9 {
		t.Fatalf("expected 50123.45, got %.4f", got)
	}
	if got := QuantizePrice(99.9, 0); got != 99.9 {
		t.Fatalf("zero tick should pass through, got %.4f", got)
	}
}
