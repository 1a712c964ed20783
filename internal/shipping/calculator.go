// AngelaMos | 2026
// calculator.go

package shipping

const (
	singleItemCents = 7000
	twoItemsCents   = 15000
	bulkCents       = 10000
)

// Cost returns the flat shipping fee in minor currency units for a cart
// holding totalQuantity units across all lines.
func Cost(totalQuantity int) int64 {
	switch {
	case totalQuantity <= 0:
		return 0
	case totalQuantity == 1:
		return singleItemCents
	case totalQuantity == 2:
		return twoItemsCents
	default:
		return bulkCents
	}
}
