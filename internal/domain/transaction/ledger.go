package transaction

import (
	"github.com/shopspring/decimal"
	"github.com/simplelender/backend/internal/apperror"
)

const (
	// MoneyScale is the number of decimal places kept for monetary amounts.
	MoneyScale = 2
	// RateScale is the number of decimal places accepted for interest values.
	RateScale = 4

	// maxInputScale bounds the exponent of incoming amounts so that rounding
	// never rescales by an unbounded power of ten.
	maxInputScale = 18
)

// Column limits: money is NUMERIC(18,2), interest values are NUMERIC(18,4).
var (
	MaxMoneyAmount   = decimal.RequireFromString("9999999999999999.99")
	MaxInterestValue = decimal.RequireFromString("99999999999999.9999")
)

var hundred = decimal.NewFromInt(100)

type LedgerFields struct {
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	TotalBalance    decimal.Decimal
}

// CalculateLedgerFields derives interest and total balance for an entry.
// Percentage interest is principal*value/100, flat interest is value. Interest
// is rounded half away from zero to MoneyScale places before it is added to
// the principal.
func CalculateLedgerFields(principal decimal.Decimal, interestType InterestType, interestValue decimal.Decimal) (LedgerFields, error) {
	if fields := amountErrors(principal, interestValue); len(fields) > 0 {
		return LedgerFields{}, apperror.Validation("amount_out_of_range", "Validation error", fields...)
	}
	principal = principal.Round(MoneyScale)

	var interest decimal.Decimal
	switch interestType {
	case InterestPercentage:
		interest = principal.Mul(interestValue).Div(hundred)
	case InterestFlat:
		interest = interestValue
	default:
		return LedgerFields{}, apperror.Validation("invalid_interest_type", "Validation error",
			apperror.FieldError{Field: "interest_type", Message: "must be percentage or flat"})
	}
	interest = interest.Round(MoneyScale)
	total := principal.Add(interest)

	if interest.GreaterThan(MaxMoneyAmount) || total.GreaterThan(MaxMoneyAmount) {
		return LedgerFields{}, apperror.Validation("amount_out_of_range", "Validation error",
			apperror.FieldError{Field: "total_balance", Message: "exceeds " + MaxMoneyAmount.String()})
	}

	return LedgerFields{
		PrincipalAmount: principal,
		InterestAmount:  interest,
		TotalBalance:    total,
	}, nil
}

// amountErrors checks the caller-supplied amounts against the column limits.
// Negative values are reported elsewhere.
func amountErrors(principal, interestValue decimal.Decimal) []apperror.FieldError {
	var fields []apperror.FieldError
	if !principal.IsNegative() {
		if !withinLimit(principal, MaxMoneyAmount) || principal.Round(MoneyScale).GreaterThan(MaxMoneyAmount) {
			fields = append(fields, apperror.FieldError{Field: "principal_amount", Message: "must not exceed " + MaxMoneyAmount.String()})
		}
	}
	if !interestValue.IsNegative() {
		switch {
		case !withinLimit(interestValue, MaxInterestValue):
			fields = append(fields, apperror.FieldError{Field: "interest_value", Message: "must not exceed " + MaxInterestValue.String()})
		case !interestValue.Equal(interestValue.Truncate(RateScale)):
			fields = append(fields, apperror.FieldError{Field: "interest_value", Message: "must have at most 4 decimal places"})
		}
	}
	return fields
}

// withinLimit compares d with max after checking the exponent, so inputs such
// as 1e20000000 are rejected without being expanded.
func withinLimit(d, max decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxInputScale {
		return false
	}
	maxIntDigits := int64(max.NumDigits()) + int64(max.Exponent())
	if int64(d.NumDigits())+exp > maxIntDigits {
		return false
	}
	return d.Cmp(max) <= 0
}
