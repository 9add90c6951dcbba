package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vendas-backend/models"
	"vendas-backend/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.BcryptCost = bcrypt.MinCost

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Password: "s3cret-pass"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createClient(t *testing.T, db *gorm.DB, owner models.User, name, phone string) models.Client {
	t.Helper()
	client := models.Client{Name: name, Phone: phone, CreatedByID: owner.ID}
	require.NoError(t, db.Create(&client).Error)
	return client
}
