package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	QuoteDraft       = "draft"
	QuoteSent        = "sent"
	QuoteNegotiating = "negotiating"
	QuoteApproved    = "approved"
	QuoteClosed      = "closed"
	QuoteLost        = "lost"
)

var ErrItemNeedsProductOrDescription = errors.New("quote item needs a product or a description")

var ErrInvalidQuantity = errors.New("quote item quantity must be positive")

func ValidQuoteStatus(status string) bool {
	switch status {
	case QuoteDraft, QuoteSent, QuoteNegotiating, QuoteApproved, QuoteClosed, QuoteLost:
		return true
	}
	return false
}

type Quote struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Number       string          `gorm:"size:50;uniqueIndex;not null" json:"number"`
	ClientID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"client"`
	Client       *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client_detail,omitempty"`
	Date         time.Time       `gorm:"index" json:"date"`
	Status       string          `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	PaymentTerms string          `gorm:"type:text" json:"payment_terms"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Date.IsZero() {
		q.Date = time.Now()
	}
	if q.Status == "" {
		q.Status = QuoteDraft
	}
	return
}

func (q *Quote) AfterFind(tx *gorm.DB) (err error) {
	for i := range q.Items {
		q.Items[i].Total = q.Items[i].LineTotal()
	}
	return
}

// ItemsTotal sums the line totals of the loaded items.
func (q *Quote) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range q.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"quote"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product"`
	Product     *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Description string          `gorm:"size:200" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	// Never stored; recomputed from price and quantity.
	Total decimal.Decimal `gorm:"-" json:"total"`
}

func (i *QuoteItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *QuoteItem) Validate() error {
	if i.ProductID == nil && strings.TrimSpace(i.Description) == "" {
		return ErrItemNeedsProductOrDescription
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return i.Validate()
}

func (i *QuoteItem) BeforeSave(tx *gorm.DB) (err error) {
	return i.Validate()
}

func (i *QuoteItem) AfterFind(tx *gorm.DB) (err error) {
	i.Total = i.LineTotal()
	return
}

func (i *QuoteItem) AfterSave(tx *gorm.DB) (err error) {
	i.Total = i.LineTotal()
	return
}
