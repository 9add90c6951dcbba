package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/utils"
)

// Reminder inputs have no sent flag: only the dispatcher sets it, and moving
// remind_at re-arms the reminder.
type CreateReminderInput struct {
	EventID  uuid.UUID `json:"event" binding:"required"`
	RemindAt time.Time `json:"remind_at" binding:"required"`
}

type UpdateReminderInput struct {
	EventID  *uuid.UUID `json:"event"`
	RemindAt *time.Time `json:"remind_at"`
}

var reminderListOptions = listOptions{
	filters: []queryFilter{
		{param: "event", column: "event_id", kind: filterUUID},
		{param: "sent", column: "sent", kind: filterBool},
	},
	ordering: map[string]string{"remind_at": "remind_at"},
	defaults: []string{"remind_at"},
}

// GetReminders accepts due=true for unsent reminders whose time has passed.
func GetReminders(c *gin.Context) {
	q := dbFrom(c).Model(&models.Reminder{})

	if raw := c.Query("due"); raw != "" {
		due, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid filter: due must be true or false")
			return
		}
		if due {
			q = q.Where("sent = ? AND remind_at <= ?", false, time.Now())
		}
	}

	q, err := listQuery(q, c, reminderListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	reminders := []models.Reminder{}
	if err := q.Find(&reminders).Error; err != nil {
		respondDBError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func CreateReminder(c *gin.Context) {
	var input CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reminder := models.Reminder{EventID: input.EventID, RemindAt: input.RemindAt}
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Event{}, reminder.EventID); err != nil {
			return err
		}
		return tx.Omit("Event").Create(&reminder).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Reminder", "Event")
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func GetReminder(c *gin.Context) {
	id, ok := parseIDParam(c, "reminder")
	if !ok {
		return
	}
	var reminder models.Reminder
	if err := dbFrom(c).First(&reminder, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func UpdateReminder(c *gin.Context) {
	id, ok := parseIDParam(c, "reminder")
	if !ok {
		return
	}

	var input UpdateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var reminder models.Reminder
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reminder, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if input.EventID != nil {
			if err := requireRow(tx, &models.Event{}, *input.EventID); err != nil {
				return err
			}
			updates["event_id"] = *input.EventID
		}
		if input.RemindAt != nil {
			updates["remind_at"] = *input.RemindAt
			if !input.RemindAt.Equal(reminder.RemindAt) {
				updates["sent"] = false
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&reminder).Omit("Event").Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&reminder, "id = ?", id).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Reminder", "Event")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func DeleteReminder(c *gin.Context) {
	deleteByPolicy(c, "reminders", "Reminder")
}
