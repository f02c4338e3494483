package common

import "github.com/shopspring/decimal"

// AmountTolerance is the epsilon used for all cross-source amount
// comparisons: 0.01 currency unit, inclusive. It absorbs rounding
// differences between the acquirer and processor feeds.
var AmountTolerance = decimal.New(1, -2)

// AmountsWithinTolerance reports whether two amounts are equal within the
// inclusive tolerance: a difference of exactly 0.01 still matches.
func AmountsWithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(AmountTolerance)
}

// AmountCents returns the amount floored to whole cents. Used only as a
// bucketing key for near-linear candidate lookup; callers must still apply
// AmountsWithinTolerance to the bucket hits.
func AmountCents(a decimal.Decimal) int64 {
	return a.Mul(decimal.New(100, 0)).Floor().IntPart()
}

// NewDecimalFromString converts a string to a decimal.Decimal pointer. If
// the input string is empty, it returns nil.
func NewDecimalFromString(data string) (*decimal.Decimal, error) {
	if data != "" {
		amount, err := decimal.NewFromString(data)
		if err != nil {
			return nil, err
		}
		return &amount, nil
	}
	return nil, nil
}
