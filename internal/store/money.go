package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quantities and money are persisted as integer hundredths so that SQL
// arithmetic (sums, guarded decrements) stays exact.

// cents converts a decimal to integer hundredths, rounding to two
// fractional digits first.
func cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// fromCents converts integer hundredths back to a decimal.
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// fromTenThousandths converts a product of two hundredths values
// (scale 10^-4) back to a decimal.
func fromTenThousandths(v int64) decimal.Decimal {
	return decimal.New(v, -4)
}

// sqliteTimeLayout matches the format CURRENT_TIMESTAMP writes, so
// range comparisons against stored timestamps work lexicographically.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
