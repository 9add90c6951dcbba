package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendas-backend/models"
	"vendas-backend/utils"
)

type CreateClientInput struct {
	Name    string `json:"name" binding:"required,max=200"`
	Company string `json:"company" binding:"max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Notes   string `json:"notes"`
}

type UpdateClientInput struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Company *string `json:"company" binding:"omitempty,max=200"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Notes   *string `json:"notes"`
}

var clientListOptions = listOptions{
	filters: []queryFilter{
		{param: "created_by", column: "created_by_id", kind: filterUUID},
	},
	search: []string{"name", "company", "email"},
	ordering: map[string]string{
		"name":       "name",
		"company":    "company",
		"created_at": "created_at",
	},
	defaults: []string{"name"},
}

func GetClients(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.Client{}), c, clientListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	clients := []models.Client{}
	if err := q.Preload("Contacts").Find(&clients).Error; err != nil {
		respondDBError(c, err, "Client")
		return
	}
	c.JSON(http.StatusOK, clients)
}

// CreateClient records the authenticated user as the creator.
func CreateClient(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	client := models.Client{
		Name:        input.Name,
		Company:     input.Company,
		Email:       input.Email,
		Phone:       input.Phone,
		Notes:       input.Notes,
		CreatedByID: userID,
	}
	if err := dbFrom(c).Create(&client).Error; err != nil {
		respondDBError(c, err, "Client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

func GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "client")
	if !ok {
		return
	}
	client, err := findClient(c, id)
	if err != nil {
		respondDBError(c, err, "Client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	client, err := findClient(c, id)
	if err != nil {
		respondDBError(c, err, "Client")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := dbFrom(c).Model(&client).Updates(updates).Error; err != nil {
			respondDBError(c, err, "Client")
			return
		}
	}

	client, err = findClient(c, id)
	if err != nil {
		respondDBError(c, err, "Client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient fails with 409 while quotes reference the client; its
// contacts are removed and events keep existing without a client.
func DeleteClient(c *gin.Context) {
	deleteByPolicy(c, "clients", "Client")
}

func findClient(c *gin.Context, id uuid.UUID) (models.Client, error) {
	var client models.Client
	err := dbFrom(c).Preload("Contacts").First(&client, "id = ?", id).Error
	return client, err
}
