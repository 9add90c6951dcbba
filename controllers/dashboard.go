package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vendas-backend/models"
)

type DashboardOverview struct {
	TotalClients    int64            `json:"totalClients"`
	TotalProducts   int64            `json:"totalProducts"`
	QuotesByStatus  map[string]int64 `json:"quotesByStatus"`
	OpenQuotesValue decimal.Decimal  `json:"openQuotesValue"`
	UpcomingEvents  []UpcomingEvent  `json:"upcomingEvents"`
	DueReminders    int64            `json:"dueReminders"`
}

type UpcomingEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // "Today", "Tomorrow", "3 days"
}

// openQuoteStatuses are the statuses still in play for a sale.
var openQuoteStatuses = []string{models.QuoteDraft, models.QuoteSent, models.QuoteNegotiating}

// GetDashboardOverview summarises clients, quotes and the week's agenda.
func GetDashboardOverview(c *gin.Context) {
	db := dbFrom(c)
	now := time.Now()
	overview := DashboardOverview{QuotesByStatus: map[string]int64{}}

	if err := db.Model(&models.Client{}).Count(&overview.TotalClients).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}
	if err := db.Model(&models.Product{}).Count(&overview.TotalProducts).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Quote{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}
	for _, s := range byStatus {
		overview.QuotesByStatus[s.Status] = s.Count
	}

	var openTotals []decimal.Decimal
	if err := db.Model(&models.Quote{}).Where("status IN ?", openQuoteStatuses).Pluck("total", &openTotals).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}
	overview.OpenQuotesValue = decimal.Sum(decimal.Zero, openTotals...)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var events []models.Event
	if err := db.Where("start_date >= ? AND start_date < ?", today, today.AddDate(0, 0, 7)).
		Order("start_date").Limit(10).Find(&events).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}
	overview.UpcomingEvents = []UpcomingEvent{}
	for _, e := range events {
		overview.UpcomingEvents = append(overview.UpcomingEvents, UpcomingEvent{
			ID:    e.ID.String(),
			Title: e.Title,
			Date:  relativeDay(today, e.StartDate),
		})
	}

	if err := db.Model(&models.Reminder{}).Where("sent = ? AND remind_at <= ?", false, now).
		Count(&overview.DueReminders).Error; err != nil {
		respondDBError(c, err, "Dashboard")
		return
	}

	c.JSON(http.StatusOK, overview)
}

func relativeDay(today, t time.Time) string {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, today.Location())
	switch days := int(day.Sub(today).Hours() / 24); days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
