package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendas-backend/models"
	"vendas-backend/utils"
)

type UpdateUserInput struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
	Password  *string `json:"password" binding:"omitempty,min=1"`
}

var userListOptions = listOptions{
	filters: []queryFilter{
		{param: "role", column: "role", kind: filterString},
		{param: "is_active", column: "is_active", kind: filterBool},
	},
	search: []string{"username", "email", "first_name", "last_name"},
	ordering: map[string]string{
		"username":   "username",
		"created_at": "created_at",
	},
	defaults: []string{"username"},
}

func GetUsers(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.User{}), c, userListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		respondDBError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var user models.User
	if err := dbFrom(c).First(&user, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser changes profile fields. A new password is hashed before it is
// stored.
func UpdateUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Role != nil && !models.ValidRole(*input.Role) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid role")
		return
	}

	var user models.User
	if err := dbFrom(c).First(&user, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "User")
		return
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Password != nil {
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		if err := dbFrom(c).Model(&user).Updates(updates).Error; err != nil {
			respondDBError(c, err, "User")
			return
		}
	}

	if err := dbFrom(c).First(&user, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser fails with 409 while the user still owns clients or events.
func DeleteUser(c *gin.Context) {
	deleteByPolicy(c, "users", "User")
}

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	return parseIDParam(c, "user")
}
