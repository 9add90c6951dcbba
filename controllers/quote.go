package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

var (
	errItemPriceRequired = errors.New("price is required for items without a product")
	errMissingQuote      = errors.New("quote does not exist")
)

// QuoteItemInput is one line of a quote. Without a price the linked
// product's price is used.
type QuoteItemInput struct {
	ProductID   *uuid.UUID       `json:"product"`
	Description string           `json:"description" binding:"max=200"`
	Quantity    int              `json:"quantity" binding:"required,min=1"`
	Price       *decimal.Decimal `json:"price"`
}

// CreateQuoteInput has no total: it is always computed from the items.
type CreateQuoteInput struct {
	Number       string           `json:"number" binding:"max=50"`
	ClientID     uuid.UUID        `json:"client" binding:"required"`
	Date         *time.Time       `json:"date"`
	Status       string           `json:"status"`
	PaymentTerms string           `json:"payment_terms"`
	Items        []QuoteItemInput `json:"items" binding:"omitempty,dive"`
}

type UpdateQuoteInput struct {
	Number       *string           `json:"number" binding:"omitempty,min=1,max=50"`
	ClientID     *uuid.UUID        `json:"client"`
	Date         *time.Time        `json:"date"`
	Status       *string           `json:"status"`
	PaymentTerms *string           `json:"payment_terms"`
	Items        *[]QuoteItemInput `json:"items" binding:"omitempty,dive"`
}

var quoteListOptions = listOptions{
	filters: []queryFilter{
		{param: "status", column: "status", kind: filterString},
		{param: "client", column: "client_id", kind: filterUUID},
	},
	search: []string{"number"},
	ordering: map[string]string{
		"number": "number",
		"date":   "date",
		"total":  "total",
		"status": "status",
	},
	defaults: []string{"-date"},
}

func GetQuotes(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.Quote{}), c, quoteListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	quotes := []models.Quote{}
	if err := q.Preload("Items").Preload("Client").Find(&quotes).Error; err != nil {
		respondDBError(c, err, "Quote")
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// CreateQuote stores the quote with its items and computes the total. A
// missing number is generated.
func CreateQuote(c *gin.Context) {
	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Status != "" && !models.ValidQuoteStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote status")
		return
	}

	quote := models.Quote{
		Number:       strings.TrimSpace(input.Number),
		ClientID:     input.ClientID,
		Status:       input.Status,
		PaymentTerms: input.PaymentTerms,
	}
	if input.Date != nil {
		quote.Date = *input.Date
	}
	if quote.Number == "" {
		quote.Number = "ORC-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6)
	}

	tx := dbFrom(c).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := requireRow(tx, &models.Client{}, quote.ClientID); err != nil {
		tx.Rollback()
		respondReferenceError(c, err, "Quote", "Client")
		return
	}

	var count int64
	if err := tx.Model(&models.Quote{}).Where("number = ?", quote.Number).Count(&count).Error; err != nil {
		tx.Rollback()
		respondDBError(c, err, "Quote")
		return
	}
	if count > 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Quote with this number already exists")
		return
	}

	if err := tx.Omit("Items", "Client").Create(&quote).Error; err != nil {
		tx.Rollback()
		respondDBError(c, err, "Quote with this number")
		return
	}

	if err := replaceQuoteItems(tx, quote.ID, input.Items); err != nil {
		tx.Rollback()
		respondItemError(c, err)
		return
	}

	if _, err := services.RecalculateQuoteTotal(tx, quote.ID); err != nil {
		tx.Rollback()
		respondDBError(c, err, "Quote")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, err, "Quote")
		return
	}

	created, err := findQuote(c, quote.ID)
	if err != nil {
		respondDBError(c, err, "Quote")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func GetQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "quote")
	if !ok {
		return
	}
	quote, err := findQuote(c, id)
	if err != nil {
		respondDBError(c, err, "Quote")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// UpdateQuote changes the given fields. Sending items replaces every line.
func UpdateQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "quote")
	if !ok {
		return
	}

	var input UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Status != nil && !models.ValidQuoteStatus(*input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote status")
		return
	}

	tx := dbFrom(c).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var quote models.Quote
	if err := tx.First(&quote, "id = ?", id).Error; err != nil {
		tx.Rollback()
		respondDBError(c, err, "Quote")
		return
	}

	updates := map[string]interface{}{}
	if input.Number != nil && *input.Number != quote.Number {
		var count int64
		if err := tx.Model(&models.Quote{}).Where("number = ?", *input.Number).Count(&count).Error; err != nil {
			tx.Rollback()
			respondDBError(c, err, "Quote")
			return
		}
		if count > 0 {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusConflict, "Quote with this number already exists")
			return
		}
		updates["number"] = *input.Number
	}
	if input.ClientID != nil {
		if err := requireRow(tx, &models.Client{}, *input.ClientID); err != nil {
			tx.Rollback()
			respondReferenceError(c, err, "Quote", "Client")
			return
		}
		updates["client_id"] = *input.ClientID
	}
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.PaymentTerms != nil {
		updates["payment_terms"] = *input.PaymentTerms
	}

	if len(updates) > 0 {
		if err := tx.Model(&quote).Omit("Items", "Client").Updates(updates).Error; err != nil {
			tx.Rollback()
			respondDBError(c, err, "Quote with this number")
			return
		}
	}

	if input.Items != nil {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			tx.Rollback()
			respondDBError(c, err, "Quote item")
			return
		}
		if err := replaceQuoteItems(tx, quote.ID, *input.Items); err != nil {
			tx.Rollback()
			respondItemError(c, err)
			return
		}
	}

	if _, err := services.RecalculateQuoteTotal(tx, quote.ID); err != nil {
		tx.Rollback()
		respondDBError(c, err, "Quote")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, err, "Quote")
		return
	}

	updated, err := findQuote(c, id)
	if err != nil {
		respondDBError(c, err, "Quote")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteQuote removes the quote and its items.
func DeleteQuote(c *gin.Context) {
	deleteByPolicy(c, "quotes", "Quote")
}

func findQuote(c *gin.Context, id uuid.UUID) (models.Quote, error) {
	var quote models.Quote
	err := dbFrom(c).Preload("Items").Preload("Client").First(&quote, "id = ?", id).Error
	return quote, err
}

// replaceQuoteItems inserts inputs as items of quoteID.
func replaceQuoteItems(tx *gorm.DB, quoteID uuid.UUID, inputs []QuoteItemInput) error {
	for _, in := range inputs {
		item, err := newQuoteItem(tx, quoteID, in)
		if err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func newQuoteItem(tx *gorm.DB, quoteID uuid.UUID, in QuoteItemInput) (models.QuoteItem, error) {
	item := models.QuoteItem{
		QuoteID:     quoteID,
		ProductID:   in.ProductID,
		Description: in.Description,
		Quantity:    in.Quantity,
	}

	if in.ProductID != nil {
		var product models.Product
		if err := tx.Select("id", "price").First(&product, "id = ?", *in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return item, errMissingReference
			}
			return item, err
		}
		item.Price = product.Price
	}

	if in.Price != nil {
		item.Price = *in.Price
	} else if in.ProductID == nil {
		return item, errItemPriceRequired
	}
	if err := checkPrice(item.Price); err != nil {
		return item, err
	}

	return item, item.Validate()
}

func respondItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errMissingReference):
		utils.RespondWithError(c, http.StatusBadRequest, "Product does not exist")
	case errors.Is(err, errItemPriceRequired),
		errors.Is(err, errNegativePrice),
		errors.Is(err, errPriceTooLarge),
		errors.Is(err, errPriceScale),
		errors.Is(err, models.ErrItemNeedsProductOrDescription),
		errors.Is(err, models.ErrInvalidQuantity):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		respondDBError(c, err, "Quote item")
	}
}
