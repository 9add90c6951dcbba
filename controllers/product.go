package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

// CreateProductInput leaves code optional; a missing code is generated from
// the name and category.
type CreateProductInput struct {
	Name     string           `json:"name" binding:"required,max=200"`
	Code     string           `json:"code" binding:"max=50"`
	Category string           `json:"category" binding:"required"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Specs    models.JSONB     `json:"specs"`
}

type UpdateProductInput struct {
	Name     *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Code     *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Specs    *models.JSONB    `json:"specs"`
}

var productListOptions = listOptions{
	filters: []queryFilter{
		{param: "category", column: "category", kind: filterString},
	},
	search: []string{"name", "code"},
	ordering: map[string]string{
		"name":  "name",
		"code":  "code",
		"price": "price",
	},
	defaults: []string{"category", "code"},
}

func GetProducts(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.Product{}), c, productListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	products := []models.Product{}
	if err := q.Preload("Documents").Preload("Videos").Find(&products).Error; err != nil {
		respondDBError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, products)
}

func CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidCategory(input.Category) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
		return
	}
	if err := checkPrice(*input.Price); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	product := models.Product{
		Name:     input.Name,
		Code:     strings.TrimSpace(input.Code),
		Category: input.Category,
		Price:    *input.Price,
		Specs:    input.Specs,
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if product.Code == "" {
			code, _, err := services.GenerateProductCode(product.Name, product.Category, services.DBCodeTaken(tx), 1)
			if err != nil {
				return err
			}
			product.Code = code
		} else if taken, err := services.DBCodeTaken(tx)(product.Code); err != nil {
			return err
		} else if taken {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		respondDBError(c, err, "Product with this code")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "product")
	if !ok {
		return
	}
	product, err := findProduct(c, id)
	if err != nil {
		respondDBError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "product")
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Category != nil && !models.ValidCategory(*input.Category) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
		return
	}
	if input.Price != nil {
		if err := checkPrice(*input.Price); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	product, err := findProduct(c, id)
	if err != nil {
		respondDBError(c, err, "Product")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Code != nil && *input.Code != product.Code {
		taken, err := services.DBCodeTaken(dbFrom(c))(*input.Code)
		if err != nil {
			respondDBError(c, err, "Product")
			return
		}
		if taken {
			utils.RespondWithError(c, http.StatusConflict, "Product with this code already exists")
			return
		}
		updates["code"] = *input.Code
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Specs != nil {
		specs := *input.Specs
		if specs == nil {
			specs = models.JSONB{}
		}
		updates["specs"] = specs
	}

	if len(updates) > 0 {
		if err := dbFrom(c).Model(&product).Updates(updates).Error; err != nil {
			respondDBError(c, err, "Product with this code")
			return
		}
	}

	product, err = findProduct(c, id)
	if err != nil {
		respondDBError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct fails with 409 while quote items reference the product;
// documents and videos are removed with it.
func DeleteProduct(c *gin.Context) {
	deleteByPolicy(c, "products", "Product")
}

func findProduct(c *gin.Context, id uuid.UUID) (models.Product, error) {
	var product models.Product
	err := dbFrom(c).Preload("Documents").Preload("Videos").First(&product, "id = ?", id).Error
	return product, err
}
