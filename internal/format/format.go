// Package format renders dashboard numbers for display.
package format

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const numberLayout = "#,###.##"

// Number renders a value with two decimal places and thousands grouping.
// A missing value renders as the literal "0", never an error.
func Number(v *float64) string {
	if v == nil {
		return "0"
	}
	return Float(*v)
}

// Float renders a value with two decimal places and thousands grouping.
func Float(v float64) string {
	return humanize.FormatFloat(numberLayout, v)
}

// Money prefixes Number with a dollar sign.
func Money(v *float64) string {
	return "$" + Number(v)
}

// SignedPercent renders a change indicator with an explicit sign and a
// percent suffix, e.g. "+1.25%" / "-0.40%".
func SignedPercent(v float64) string {
	if v >= 0 {
		return "+" + Float(v) + "%"
	}
	return Float(v) + "%"
}

// Percent renders a plain two-decimal percentage without sign forcing.
func Percent(v float64) string {
	return Float(v) + "%"
}

// ShareOfTotal renders amount's percentage of total with one decimal place,
// using decimal arithmetic so display rounding is stable. A zero total
// renders as "0.0%".
func ShareOfTotal(amount, total float64) string {
	if total == 0 {
		return "0.0%"
	}
	share := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(total)).
		Mul(decimal.NewFromInt(100))
	return share.StringFixed(1) + "%"
}
