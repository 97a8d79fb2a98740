package analytics

import (
	"fmt"
)

// Indian-unit scale boundaries.
const (
	thousand = 1e3
	lakh     = 1e5
	crore    = 1e7
	billion  = 1e9
)

// FormatNumber renders a count in compact Indian units (K, L, Cr, B), the
// convention the dashboard inherits from its data source.
func FormatNumber(v float64) string {
	switch {
	case v >= billion:
		return fmt.Sprintf("%.2fB", v/billion)
	case v >= crore:
		return fmt.Sprintf("%.2fCr", v/crore)
	case v >= lakh:
		return fmt.Sprintf("%.2fL", v/lakh)
	case v >= thousand:
		return fmt.Sprintf("%.2fK", v/thousand)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatCurrency renders an amount in rupees with the same compact units.
func FormatCurrency(v float64) string {
	switch {
	case v >= billion:
		return fmt.Sprintf("₹%.2fB", v/billion)
	case v >= crore:
		return fmt.Sprintf("₹%.2fCr", v/crore)
	case v >= lakh:
		return fmt.Sprintf("₹%.2fL", v/lakh)
	case v >= thousand:
		return fmt.Sprintf("₹%.2fK", v/thousand)
	default:
		return fmt.Sprintf("₹%.2f", v)
	}
}
