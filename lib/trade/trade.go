// Package trade normalizes raw buy/sell operation input into a fully
// resolved paid/average-price pair before it reaches the ledger.
package trade

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

var (
	ErrDirection      = fmt.Errorf("%w: exactly one of 'buy' or 'sell' must be greater than zero", errs.ErrValidation)
	ErrAmbiguousPrice = fmt.Errorf("%w: 'paid' and 'average_price' can't both be set", errs.ErrValidation)
	ErrMissingPrice   = fmt.Errorf("%w: either 'paid' or 'average_price' must be set unless the transaction is free", errs.ErrValidation)
	ErrZeroUnits      = fmt.Errorf("%w: can't derive 'average_price' with zero units", errs.ErrValidation)
	ErrNegativeField  = fmt.Errorf("%w: operation fields must not be negative", errs.ErrValidation)
)

// Operation carries the monetary fields of a single buy or sell.
type Operation struct {
	Buy          decimal.Decimal
	Sell         decimal.Decimal
	Paid         decimal.Decimal
	AveragePrice decimal.Decimal
	Fee          decimal.Decimal
}

// Units returns the transacted quantity regardless of direction.
func (op Operation) Units() decimal.Decimal {
	if op.Buy.IsPositive() {
		return op.Buy
	}
	return op.Sell
}

// IsBuy reports the direction of an already normalized operation.
func (op Operation) IsBuy() bool {
	return op.Buy.IsPositive()
}

// Normalize resolves the paid/average_price pair of op, deriving the missing
// one from the other plus the unit count and fee.
//
// The two derivation paths treat the fee asymmetrically: deriving paid from
// average_price subtracts the fee (clamped at zero), while deriving
// average_price from paid folds the fee into the rate. The behavior is kept
// exactly as observed in production data; see the tests for worked examples.
func Normalize(op Operation) (Operation, error) {
	for _, field := range []decimal.Decimal{op.Buy, op.Sell, op.Paid, op.AveragePrice, op.Fee} {
		if field.IsNegative() {
			return Operation{}, ErrNegativeField
		}
	}

	if op.Buy.IsPositive() == op.Sell.IsPositive() {
		return Operation{}, ErrDirection
	}

	units := op.Units()

	if op.Paid.IsPositive() && op.AveragePrice.IsPositive() {
		return Operation{}, ErrAmbiguousPrice
	}

	switch {
	case op.Paid.IsZero() && op.AveragePrice.IsZero():
		// A free transfer carries no price at all.
		if !op.Fee.IsZero() {
			return Operation{}, ErrMissingPrice
		}

	case op.AveragePrice.IsPositive():
		paid := units.Mul(op.AveragePrice).Sub(op.Fee)
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		op.Paid = paid

	default:
		if units.IsZero() {
			return Operation{}, ErrZeroUnits
		}
		op.AveragePrice = op.Paid.Add(op.Fee).Div(units)
	}

	return op, nil
}
