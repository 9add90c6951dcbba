package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/utils"
)

var errEndBeforeStart = errors.New("end_date must not be earlier than start_date")

type CreateEventInput struct {
	Title       string      `json:"title" binding:"required,max=200"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"start_date" binding:"required"`
	EndDate     time.Time   `json:"end_date" binding:"required"`
	AllDay      bool        `json:"all_day"`
	ClientID    *uuid.UUID  `json:"client"`
	RemindAt    []time.Time `json:"reminders"`
}

type UpdateEventInput struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AllDay      *bool      `json:"all_day"`
	ClientID    *uuid.UUID `json:"client"`
	// ClearClient detaches the event from its client.
	ClearClient bool `json:"clear_client"`
}

var eventListOptions = listOptions{
	filters: []queryFilter{
		{param: "client", column: "client_id", kind: filterUUID},
		{param: "all_day", column: "all_day", kind: filterBool},
	},
	search: []string{"title"},
	ordering: map[string]string{
		"start_date": "start_date",
		"end_date":   "end_date",
		"title":      "title",
	},
	defaults: []string{"start_date"},
}

// GetEvents also accepts start_after and start_before (RFC 3339 or
// YYYY-MM-DD) to bound the start date.
func GetEvents(c *gin.Context) {
	q := dbFrom(c).Model(&models.Event{})

	if raw := c.Query("start_after"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid start_after")
			return
		}
		q = q.Where("start_date >= ?", t)
	}
	if raw := c.Query("start_before"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid start_before")
			return
		}
		q = q.Where("start_date <= ?", t)
	}

	q, err := listQuery(q, c, eventListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	events := []models.Event{}
	if err := q.Preload("Reminders", func(db *gorm.DB) *gorm.DB {
		return db.Order("remind_at")
	}).Find(&events).Error; err != nil {
		respondDBError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent records the authenticated user as the creator. Optional
// reminder times are stored with the event.
func CreateEvent(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.EndDate.Before(input.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, errEndBeforeStart.Error())
		return
	}

	event := models.Event{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		AllDay:      input.AllDay,
		ClientID:    input.ClientID,
		CreatedByID: userID,
	}
	for _, t := range input.RemindAt {
		event.Reminders = append(event.Reminders, models.Reminder{RemindAt: t})
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if event.ClientID != nil {
			if err := requireRow(tx, &models.Client{}, *event.ClientID); err != nil {
				return err
			}
		}
		return tx.Omit("Client", "CreatedBy").Create(&event).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Event", "Client")
		return
	}
	if event.Reminders == nil {
		event.Reminders = []models.Reminder{}
	}
	c.JSON(http.StatusCreated, event)
}

func GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "event")
	if !ok {
		return
	}
	event, err := findEvent(c, id)
	if err != nil {
		respondDBError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, event)
}

func UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "event")
	if !ok {
		return
	}

	var input UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", id).Error; err != nil {
			return err
		}

		start, end := event.StartDate, event.EndDate
		updates := map[string]interface{}{}
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.StartDate != nil {
			start = *input.StartDate
			updates["start_date"] = start
		}
		if input.EndDate != nil {
			end = *input.EndDate
			updates["end_date"] = end
		}
		if end.Before(start) {
			return errEndBeforeStart
		}
		if input.AllDay != nil {
			updates["all_day"] = *input.AllDay
		}
		if input.ClientID != nil {
			if err := requireRow(tx, &models.Client{}, *input.ClientID); err != nil {
				return err
			}
			updates["client_id"] = *input.ClientID
		} else if input.ClearClient {
			updates["client_id"] = nil
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&event).Omit("Client", "CreatedBy", "Reminders").Updates(updates).Error
	})
	if errors.Is(err, errEndBeforeStart) {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondReferenceError(c, err, "Event", "Client")
		return
	}

	event, err := findEvent(c, id)
	if err != nil {
		respondDBError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes the event and its reminders.
func DeleteEvent(c *gin.Context) {
	deleteByPolicy(c, "events", "Event")
}

func findEvent(c *gin.Context, id uuid.UUID) (models.Event, error) {
	var event models.Event
	err := dbFrom(c).Preload("Reminders", func(db *gorm.DB) *gorm.DB {
		return db.Order("remind_at")
	}).First(&event, "id = ?", id).Error
	return event, err
}
