package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/utils"
)

type CreateClientContactInput struct {
	ClientID  uuid.UUID `json:"client" binding:"required"`
	Name      string    `json:"name" binding:"required,max=200"`
	Position  string    `json:"position" binding:"max=100"`
	Email     string    `json:"email" binding:"omitempty,email"`
	Phone     string    `json:"phone" binding:"omitempty,phone"`
	IsPrimary bool      `json:"is_primary"`
}

type UpdateClientContactInput struct {
	ClientID  *uuid.UUID `json:"client"`
	Name      *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Position  *string    `json:"position" binding:"omitempty,max=100"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,phone"`
	IsPrimary *bool      `json:"is_primary"`
}

var clientContactListOptions = listOptions{
	filters: []queryFilter{
		{param: "client", column: "client_id", kind: filterUUID},
		{param: "is_primary", column: "is_primary", kind: filterBool},
	},
	search:   []string{"name", "email"},
	ordering: map[string]string{"name": "name"},
	defaults: []string{"name"},
}

func GetClientContacts(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.ClientContact{}), c, clientContactListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	contacts := []models.ClientContact{}
	if err := q.Find(&contacts).Error; err != nil {
		respondDBError(c, err, "Contact")
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func CreateClientContact(c *gin.Context) {
	var input CreateClientContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	contact := models.ClientContact{
		ClientID:  input.ClientID,
		Name:      input.Name,
		Position:  input.Position,
		Email:     input.Email,
		Phone:     input.Phone,
		IsPrimary: input.IsPrimary,
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Client{}, contact.ClientID); err != nil {
			return err
		}
		if err := tx.Create(&contact).Error; err != nil {
			return err
		}
		return clearOtherPrimaries(tx, contact)
	})
	if err != nil {
		respondReferenceError(c, err, "Contact", "Client")
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func GetClientContact(c *gin.Context) {
	id, ok := parseIDParam(c, "contact")
	if !ok {
		return
	}
	var contact models.ClientContact
	if err := dbFrom(c).First(&contact, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Contact")
		return
	}
	c.JSON(http.StatusOK, contact)
}

func UpdateClientContact(c *gin.Context) {
	id, ok := parseIDParam(c, "contact")
	if !ok {
		return
	}

	var input UpdateClientContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var contact models.ClientContact
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contact, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.ClientID != nil {
			if err := requireRow(tx, &models.Client{}, *input.ClientID); err != nil {
				return err
			}
			updates["client_id"] = *input.ClientID
		}
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Position != nil {
			updates["position"] = *input.Position
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.IsPrimary != nil {
			updates["is_primary"] = *input.IsPrimary
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&contact).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&contact, "id = ?", id).Error; err != nil {
			return err
		}
		return clearOtherPrimaries(tx, contact)
	})
	if err != nil {
		respondReferenceError(c, err, "Contact", "Client")
		return
	}
	c.JSON(http.StatusOK, contact)
}

func DeleteClientContact(c *gin.Context) {
	deleteByPolicy(c, "client_contacts", "Contact")
}

// clearOtherPrimaries keeps a single primary contact per client.
func clearOtherPrimaries(tx *gorm.DB, contact models.ClientContact) error {
	if !contact.IsPrimary {
		return nil
	}
	return tx.Model(&models.ClientContact{}).
		Where("client_id = ? AND id <> ?", contact.ClientID, contact.ID).
		Update("is_primary", false).Error
}

var errMissingReference = errors.New("referenced record does not exist")

// requireRow checks that model has a row with id.
func requireRow(tx *gorm.DB, model interface{}, id uuid.UUID) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errMissingReference
	}
	return nil
}

// respondReferenceError answers 400 for a missing referenced row and
// falls back to respondDBError otherwise.
func respondReferenceError(c *gin.Context, err error, what, ref string) {
	if errors.Is(err, errMissingReference) {
		utils.RespondWithError(c, http.StatusBadRequest, ref+" does not exist")
		return
	}
	respondDBError(c, err, what)
}
