package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

type RegisterInput struct {
	Username  string `json:"username" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

// AuthController issues and revokes token pairs.
type AuthController struct {
	Tokens services.TokenStore
}

type authResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// Register creates a seller account and signs it in.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var existing models.User
	err := dbFrom(c).Where("username = ?", username).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Username already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(c, err, "User")
		return
	}

	user := models.User{
		Username:  username,
		Password:  input.Password, // hashed in BeforeCreate
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      models.RoleSeller,
		IsActive:  true,
	}
	if err := dbFrom(c).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Username already exists")
			return
		}
		respondDBError(c, err, "User")
		return
	}

	ac.respondWithTokens(c, http.StatusCreated, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	err := dbFrom(c).Where("username = ?", strings.TrimSpace(input.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			respondDBError(c, err, "User")
		}
		return
	}

	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	if err := dbFrom(c).Model(&user).Update("last_login", &now).Error; err != nil {
		respondDBError(c, err, "User")
		return
	}
	user.LastLogin = &now

	ac.respondWithTokens(c, http.StatusOK, user)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (ac *AuthController) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := utils.ParseToken(input.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	revoked, err := ac.Tokens.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check token")
		return
	}
	if revoked {
		utils.RespondWithError(c, http.StatusUnauthorized, "Refresh token has been revoked")
		return
	}

	var user models.User
	if err := dbFrom(c).First(&user, "id = ?", claims.Subject).Error; err != nil || !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := ac.Tokens.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to rotate token")
		return
	}

	ac.respondWithTokens(c, http.StatusOK, user)
}

// Logout revokes the given refresh token of the authenticated user.
func (ac *AuthController) Logout(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := utils.ParseToken(input.Refresh, utils.TokenTypeRefresh)
	if err != nil || claims.Subject != userID.String() {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := ac.Tokens.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func Me(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var user models.User
	if err := dbFrom(c).First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// AuthTest lets clients check the auth routes without a token.
func AuthTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Auth endpoint is working", "method": c.Request.Method})
}

func (ac *AuthController) respondWithTokens(c *gin.Context, status int, user models.User) {
	pair, err := utils.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(status, authResponse{Access: pair.Access, Refresh: pair.Refresh, User: user})
}
