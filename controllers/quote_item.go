package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

type CreateQuoteItemInput struct {
	QuoteID uuid.UUID `json:"quote" binding:"required"`
	QuoteItemInput
}

type UpdateQuoteItemInput struct {
	QuoteID     *uuid.UUID       `json:"quote"`
	ProductID   *uuid.UUID       `json:"product"`
	Description *string          `json:"description" binding:"omitempty,max=200"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price"`
	// ClearProduct detaches the item from its product; the description must
	// then carry the line.
	ClearProduct bool `json:"clear_product"`
}

var quoteItemListOptions = listOptions{
	filters: []queryFilter{
		{param: "quote", column: "quote_id", kind: filterUUID},
		{param: "product", column: "product_id", kind: filterUUID},
	},
	search: []string{"description"},
	ordering: map[string]string{
		"price":    "price",
		"quantity": "quantity",
	},
	defaults: []string{"id"},
}

func GetQuoteItems(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.QuoteItem{}), c, quoteItemListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	items := []models.QuoteItem{}
	if err := q.Find(&items).Error; err != nil {
		respondDBError(c, err, "Quote item")
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateQuoteItem adds a line and refreshes the quote total.
func CreateQuoteItem(c *gin.Context) {
	var input CreateQuoteItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.QuoteItem
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := requireQuote(tx, input.QuoteID); err != nil {
			return err
		}
		var err error
		item, err = newQuoteItem(tx, input.QuoteID, input.QuoteItemInput)
		if err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		_, err = services.RecalculateQuoteTotal(tx, item.QuoteID)
		return err
	})
	if err != nil {
		respondQuoteItemError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func GetQuoteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "quote item")
	if !ok {
		return
	}
	var item models.QuoteItem
	if err := dbFrom(c).First(&item, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Quote item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateQuoteItem refreshes the totals of the old and the new quote when the
// item moves.
func UpdateQuoteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "quote item")
	if !ok {
		return
	}

	var input UpdateQuoteItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Price != nil {
		if err := checkPrice(*input.Price); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	var item models.QuoteItem
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		oldQuoteID := item.QuoteID

		if input.QuoteID != nil {
			if err := requireQuote(tx, *input.QuoteID); err != nil {
				return err
			}
			item.QuoteID = *input.QuoteID
		}
		if input.ProductID != nil {
			if err := requireRow(tx, &models.Product{}, *input.ProductID); err != nil {
				return err
			}
			item.ProductID = input.ProductID
		} else if input.ClearProduct {
			item.ProductID = nil
			item.Product = nil
		}
		if input.Description != nil {
			item.Description = *input.Description
		}
		if input.Quantity != nil {
			item.Quantity = *input.Quantity
		}
		if input.Price != nil {
			item.Price = *input.Price
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if _, err := services.RecalculateQuoteTotal(tx, item.QuoteID); err != nil {
			return err
		}
		if oldQuoteID != item.QuoteID {
			if _, err := services.RecalculateQuoteTotal(tx, oldQuoteID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondQuoteItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteQuoteItem removes a line and refreshes the quote total.
func DeleteQuoteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "quote item")
	if !ok {
		return
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		var item models.QuoteItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		if err := services.Delete(tx, "quote_items", id); err != nil {
			return err
		}
		_, err := services.RecalculateQuoteTotal(tx, item.QuoteID)
		return err
	})
	if err != nil {
		respondDBError(c, err, "Quote item")
		return
	}
	c.Status(http.StatusNoContent)
}

func requireQuote(tx *gorm.DB, id uuid.UUID) error {
	err := requireRow(tx, &models.Quote{}, id)
	if errors.Is(err, errMissingReference) {
		return errMissingQuote
	}
	return err
}

func respondQuoteItemError(c *gin.Context, err error) {
	if errors.Is(err, errMissingQuote) {
		utils.RespondWithError(c, http.StatusBadRequest, "Quote does not exist")
		return
	}
	respondItemError(c, err)
}
