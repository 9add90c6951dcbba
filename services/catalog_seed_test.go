package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vendas-backend/models"
)

func TestSeedProductsDryRunWritesNothing(t *testing.T) {
	db := setupTestDB(t)

	var out bytes.Buffer
	_, err := SeedProducts(db, InitialProducts, true, &out)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestSeedProductsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	var out bytes.Buffer
	first, err := SeedProducts(db, InitialProducts, false, &out)
	require.NoError(t, err)
	assert.Equal(t, 21, first.Created)
	assert.Zero(t, first.Skipped)

	out.Reset()
	second, err := SeedProducts(db, InitialProducts, false, &out)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 21, second.Skipped)
	assert.Contains(t, out.String(), "Product already exists: Regua Vibratória RVVK")

	var product models.Product
	require.NoError(t, db.First(&product, "code = ?", "PLA-VK-85").Error)
	assert.Equal(t, "Placa Vibratória VK-85", product.Name)
	assert.Equal(t, models.CategoryPlacas, product.Category)
	assert.True(t, product.Price.IsZero())
}

func TestSeedProductsAvoidsStoredCodes(t *testing.T) {
	db := setupTestDB(t)
	manual := models.Product{Name: "Motor Elétrico Trifásico", Code: "MOT-ELE", Category: models.CategoryMotores, Price: decimal.NewFromInt(900)}
	require.NoError(t, db.Create(&manual).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Placa Vibratória VK-85", Code: "PLACA-1", Category: models.CategoryPlacas, Price: decimal.NewFromInt(1500),
	}).Error)

	var out bytes.Buffer
	res, err := SeedProducts(db, InitialProducts, false, &out)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "MOT-ELE-1", res.Codes["Motor Elétrico Dupla Isolação"])
	assert.Equal(t, "PLACA-1", res.Codes["Placa Vibratória VK-85"])

	var seeded models.Product
	require.NoError(t, db.First(&seeded, "name = ?", "Motor Elétrico Dupla Isolação").Error)
	assert.Equal(t, "MOT-ELE-1", seeded.Code)
}

func TestSeedProductsRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:reject_motor", func(tx *gorm.DB) {
		if p, ok := tx.Statement.Dest.(*models.Product); ok && p.Category == models.CategoryMotores {
			tx.AddError(errors.New("insert rejected"))
		}
	}))
	catalog := []CatalogCategory{
		{Category: models.CategoryPlacas, Products: []string{"Placa Vibratória VK-85"}},
		{Category: models.CategoryMotores, Products: []string{"Motor Elétrico Dupla Isolação"}},
	}

	var out bytes.Buffer
	_, err := SeedProducts(db, catalog, false, &out)
	require.Error(t, err)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}
