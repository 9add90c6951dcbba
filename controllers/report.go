package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vendas-backend/models"
)

// ReportController serves the catalog statistics.
type ReportController struct {
	Now func() time.Time
}

var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

type MonthCount struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Value    int64  `json:"value"`
}

type NameCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type ProductStatistics struct {
	SalesHistory    []MonthCount    `json:"salesHistory"`
	SalesByCategory []CategoryCount `json:"salesByCategory"`
	TopProducts     []NameCount     `json:"topProducts"`
}

// GetProductStatistics counts products by creation month of the current
// year, by category and by name (top ten).
func (rc *ReportController) GetProductStatistics(c *gin.Context) {
	now := time.Now()
	if rc.Now != nil {
		now = rc.Now()
	}

	db := dbFrom(c)
	stats := ProductStatistics{}

	history, err := rc.monthlyHistory(db, now)
	if err != nil {
		respondDBError(c, err, "Statistics")
		return
	}
	stats.SalesHistory = history

	stats.SalesByCategory = []CategoryCount{}
	if err := db.Model(&models.Product{}).
		Select("category, COUNT(*) AS value").
		Group("category").
		Order("value DESC").
		Scan(&stats.SalesByCategory).Error; err != nil {
		respondDBError(c, err, "Statistics")
		return
	}

	stats.TopProducts = []NameCount{}
	if err := db.Model(&models.Product{}).
		Select("name, COUNT(*) AS value").
		Group("name").
		Order("value DESC").
		Limit(10).
		Scan(&stats.TopProducts).Error; err != nil {
		respondDBError(c, err, "Statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// monthlyHistory buckets in Go; month extraction differs between dialects.
func (rc *ReportController) monthlyHistory(db *gorm.DB, now time.Time) ([]MonthCount, error) {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(1, 0, 0)

	var created []time.Time
	if err := db.Model(&models.Product{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}

	var counts [12]int64
	for _, t := range created {
		counts[t.In(now.Location()).Month()-1]++
	}

	history := []MonthCount{}
	for i, n := range counts {
		if n > 0 {
			history = append(history, MonthCount{Month: monthNames[i], Value: n})
		}
	}
	return history, nil
}
