package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendas-backend/models"
)

// MaxAmount is the smallest value a decimal(10,2) column cannot hold.
var MaxAmount = decimal.New(1, 8)

var ErrAmountOutOfRange = errors.New("quote total must be below 100000000")

// RecalculateQuoteTotal stores the sum of the quote's line totals on the
// quote row and returns it.
func RecalculateQuoteTotal(tx *gorm.DB, quoteID uuid.UUID) (decimal.Decimal, error) {
	var items []models.QuoteItem
	if err := tx.Where("quote_id = ?", quoteID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}

	if total.Abs().GreaterThanOrEqual(MaxAmount) {
		return total, ErrAmountOutOfRange
	}

	err := tx.Model(&models.Quote{}).Where("id = ?", quoteID).Update("total", total).Error
	return total, err
}
