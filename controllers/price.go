package controllers

import (
	"errors"

	"github.com/shopspring/decimal"

	"vendas-backend/services"
)

var (
	errNegativePrice = errors.New("price cannot be negative")
	errPriceTooLarge = errors.New("price must be below 100000000")
	errPriceScale    = errors.New("price cannot have more than 2 decimal places")
)

// checkPrice accepts what a decimal(10,2) column stores without rounding.
func checkPrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return errNegativePrice
	case p.GreaterThanOrEqual(services.MaxAmount):
		return errPriceTooLarge
	case !p.Equal(p.Round(2)):
		return errPriceScale
	}
	return nil
}
