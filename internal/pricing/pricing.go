package pricing

import (
	"fmt"
	"math"
)

// Tier is a named rental-duration option mapping to a price multiplier
type Tier string

const (
	TierOneMonth  Tier = "1month"  // 4 weeks at the plain weekly price
	TierTwoMonths Tier = "2months" // 8 weeks, 10% off the doubled weekly price
)

// twoMonthDiscount is the multiplier applied to the doubled weekly price
const twoMonthDiscount = 0.9

// Delivery options with flat fees, looked up rather than computed
type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryStandard DeliveryOption = "standard"
	DeliveryExpress  DeliveryOption = "express"
)

var deliveryFees = map[DeliveryOption]float64{
	DeliveryPickup:   0,
	DeliveryStandard: 49,
	DeliveryExpress:  99,
}

// promoPercents maps known promo codes to their percentage off the subtotal
var promoPercents = map[string]float64{
	"READER10": 10,
}

var (
	ErrQuantityBelowOne = fmt.Errorf("quantity must be at least 1")
	ErrItemNotFound     = fmt.Errorf("item not in cart")
	ErrUnknownDelivery  = fmt.Errorf("unknown delivery option")
	ErrUnknownPromoCode = fmt.Errorf("unknown promo code")
)

// TierPrice returns the rental price for one copy at the given tier. An
// unrecognized tier deliberately falls back to 1-month behavior; the
// storefront has always treated it as the default, not an error.
func TierPrice(weeklyPrice float64, tier Tier) float64 {
	switch tier {
	case TierTwoMonths:
		return weeklyPrice * 2 * twoMonthDiscount
	case TierOneMonth:
		return weeklyPrice
	default:
		return weeklyPrice
	}
}

// TierWeeks returns the rental duration in weeks, with the same 1-month
// fallback as TierPrice
func TierWeeks(tier Tier) int {
	if tier == TierTwoMonths {
		return 8
	}
	return 4
}

// DeliveryFee looks up the flat fee for a delivery option
func DeliveryFee(option DeliveryOption) (float64, error) {
	fee, ok := deliveryFees[option]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDelivery, option)
	}
	return fee, nil
}

// PromoDiscount returns the discount a promo code takes off the subtotal.
// Unknown codes are rejected and leave totals untouched.
func PromoDiscount(code string, subtotal float64) (float64, error) {
	if code == "" {
		return 0, nil
	}
	percent, ok := promoPercents[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPromoCode, code)
	}
	return subtotal * percent / 100, nil
}

// Round2 rounds a monetary value to 2 decimal places. Applied only to
// displayed figures and final totals; intermediate math stays unrounded so
// error doesn't compound across items.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// SameCents reports whether two monetary amounts agree to the cent. The
// client-computed checkout total and the server-side recomputation must.
func SameCents(a, b float64) bool {
	return math.Abs(Round2(a)-Round2(b)) < 0.005
}
