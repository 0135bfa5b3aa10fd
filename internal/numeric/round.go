package numeric

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimal places, half away from zero
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns part as a percentage of whole rounded to two decimals, or 0 when whole is 0
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(part / whole * 100)
}
