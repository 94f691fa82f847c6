package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierPrice(t *testing.T) {
	assert.InDelta(t, 10.00, TierPrice(10, TierOneMonth), 0.001)
	assert.InDelta(t, 18.00, TierPrice(10, TierTwoMonths), 0.001)

	// Unrecognized tiers fall back to 1-month pricing; this is the
	// storefront's documented default, not an error path.
	assert.InDelta(t, 8.00, TierPrice(8, Tier("6months")), 0.001)
	assert.InDelta(t, 8.00, TierPrice(8, Tier("")), 0.001)
	assert.Equal(t, TierPrice(8, TierOneMonth), TierPrice(8, Tier("whatever")))
}

func TestItemTotal(t *testing.T) {
	item := Item{BookID: "BK1", WeeklyPrice: 5, Tier: TierOneMonth, Quantity: 3}
	assert.InDelta(t, 15.00, item.Total(), 0.001)

	item = Item{BookID: "BK2", WeeklyPrice: 10, Tier: TierTwoMonths, Quantity: 2}
	assert.InDelta(t, 36.00, item.Total(), 0.001)
}

func TestCartSubtotal(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))
	require.NoError(t, cart.AddItem(Item{BookID: "BK2", WeeklyPrice: 10, Tier: TierTwoMonths, Quantity: 2}))

	assert.InDelta(t, 46.00, cart.Subtotal(), 0.001)
}

func TestCartQuote(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))
	require.NoError(t, cart.AddItem(Item{BookID: "BK2", WeeklyPrice: 10, Tier: TierTwoMonths, Quantity: 2}))

	quote, err := cart.Quote(DeliveryStandard, "")
	require.NoError(t, err)
	assert.InDelta(t, 46.00, quote.Subtotal, 0.001)
	assert.InDelta(t, 49.00, quote.DeliveryFee, 0.001)
	assert.InDelta(t, 0.00, quote.PromoDiscount, 0.001)
	assert.InDelta(t, 95.00, quote.GrandTotal, 0.001)

	quote, err = cart.Quote(DeliveryPickup, "READER10")
	require.NoError(t, err)
	assert.InDelta(t, 4.60, quote.PromoDiscount, 0.001)
	assert.InDelta(t, 41.40, quote.GrandTotal, 0.001)
}

func TestQuoteRejectsUnknownPromo(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))

	_, err := cart.Quote(DeliveryPickup, "FREEBOOKS")
	assert.ErrorIs(t, err, ErrUnknownPromoCode)

	// Rejection leaves totals unaffected
	quote, err := cart.Quote(DeliveryPickup, "")
	require.NoError(t, err)
	assert.InDelta(t, 10.00, quote.GrandTotal, 0.001)
}

func TestQuoteRejectsUnknownDelivery(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))

	_, err := cart.Quote(DeliveryOption("drone"), "")
	assert.ErrorIs(t, err, ErrUnknownDelivery)
}

func TestGrandTotalClampsAtZero(t *testing.T) {
	// Artificially large discount on a tiny cart must not go negative
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 0.01, Tier: TierOneMonth, Quantity: 1}))

	quote, err := cart.Quote(DeliveryPickup, "READER10")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, quote.GrandTotal, 0.0)
}

func TestQuantityBelowOneRejected(t *testing.T) {
	cart := NewCart()
	assert.ErrorIs(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 0}), ErrQuantityBelowOne)

	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 2}))
	assert.ErrorIs(t, cart.UpdateQuantity("BK1", 0), ErrQuantityBelowOne)
	assert.ErrorIs(t, cart.UpdateQuantity("BK1", -3), ErrQuantityBelowOne)

	// Rejected updates leave the line as it was
	assert.Equal(t, 2, cart.Items()[0].Quantity)
}

func TestMutationsAreIsolated(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))
	require.NoError(t, cart.AddItem(Item{BookID: "BK2", WeeklyPrice: 7, Tier: TierOneMonth, Quantity: 1}))

	require.NoError(t, cart.UpdateTier("BK1", TierTwoMonths))
	require.NoError(t, cart.UpdateQuantity("BK1", 3))

	items := cart.Items()
	assert.Equal(t, TierTwoMonths, items[0].Tier)
	assert.Equal(t, 3, items[0].Quantity)

	// The other line is untouched
	assert.Equal(t, TierOneMonth, items[1].Tier)
	assert.Equal(t, 1, items[1].Quantity)
	assert.InDelta(t, 7.00, items[1].Total(), 0.001)
}

func TestAddExistingBookMergesQuantity(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 2}))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(Item{BookID: "BK1", WeeklyPrice: 10, Tier: TierOneMonth, Quantity: 1}))

	assert.NoError(t, cart.RemoveItem("BK1"))
	assert.Empty(t, cart.Items())
	assert.ErrorIs(t, cart.RemoveItem("BK1"), ErrItemNotFound)
}

func TestSameCents(t *testing.T) {
	assert.True(t, SameCents(46.00, 45.999999))
	assert.True(t, SameCents(0.1+0.2, 0.3))
	assert.False(t, SameCents(46.00, 46.01))
}

func TestParseHelpers(t *testing.T) {
	fee, err := DeliveryFee(DeliveryExpress)
	require.NoError(t, err)
	assert.InDelta(t, 99.00, fee, 0.001)

	discount, err := PromoDiscount("", 100)
	require.NoError(t, err)
	assert.Zero(t, discount)
}
