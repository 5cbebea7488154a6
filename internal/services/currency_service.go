package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyService converts amounts between currency codes through the base
// rate. Rates come from the injected provider; the service itself keeps no
// state, so a rate refresh is visible on the next call.
type CurrencyService struct {
	rates RateProvider
}

func NewCurrencyService(rates RateProvider) *CurrencyService {
	return &CurrencyService{rates: rates}
}

// ToBase converts an amount in the given currency to the base currency.
func (s *CurrencyService) ToBase(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	base, err := s.rates.BaseCurrency(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNoBaseCurrency, err)
	}
	if code == "" || code == base.Code {
		return amount, nil
	}

	currency, err := s.rates.Currency(ctx, code)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return amount.Mul(currency.RateToBase).Round(2), nil
}

// Convert converts an amount from one currency to another via the base rate.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}

	inBase, err := s.ToBase(ctx, amount, fromCode)
	if err != nil {
		return decimal.Zero, err
	}

	base, err := s.rates.BaseCurrency(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNoBaseCurrency, err)
	}
	if toCode == "" || toCode == base.Code {
		return inBase, nil
	}

	target, err := s.rates.Currency(ctx, toCode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, toCode)
	}
	if target.RateToBase.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %q has a zero rate", ErrUnknownCurrency, toCode)
	}
	return inBase.Div(target.RateToBase).Round(2), nil
}
