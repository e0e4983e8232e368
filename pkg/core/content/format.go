package content

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatShare renders value/total as a percentage with the given number of
// decimals. A non-positive total renders as zero.
func FormatShare(value, total float64, decimals int32) string {
	if total <= 0 {
		return decimal.Zero.StringFixed(decimals) + "%"
	}
	share := decimal.NewFromFloat(value).Div(decimal.NewFromFloat(total)).Mul(hundred)
	return share.StringFixed(decimals) + "%"
}

// FormatAmount renders value in the given currency. Unknown or empty
// currencies fall back to a plain fixed-point number.
func FormatAmount(value float64, currency string, decimals int32) string {
	amount := decimal.NewFromFloat(value)
	cur := money.GetCurrency(strings.ToUpper(currency))
	if currency == "" || cur == nil {
		return amount.StringFixed(decimals)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func (c Config) formatValue(value, share float64) string {
	if c.ValueMode == ValueAmount {
		return FormatAmount(value, c.Currency, c.Decimals)
	}
	return FormatShare(share, 1, c.Decimals)
}
