package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/utils"
)

type CreateVideoInput struct {
	ProductID    uuid.UUID `json:"product" binding:"required"`
	Type         string    `json:"type"`
	Title        string    `json:"title" binding:"required,max=200"`
	ExternalLink string    `json:"external_link" binding:"omitempty,url"`
	YoutubeLink  string    `json:"youtube_link" binding:"omitempty,url"`
}

type UpdateVideoInput struct {
	ProductID    *uuid.UUID `json:"product"`
	Type         *string    `json:"type"`
	Title        *string    `json:"title" binding:"omitempty,min=1,max=200"`
	ExternalLink *string    `json:"external_link" binding:"omitempty,url"`
	YoutubeLink  *string    `json:"youtube_link" binding:"omitempty,url"`
}

var videoListOptions = listOptions{
	filters: []queryFilter{
		{param: "product", column: "product_id", kind: filterUUID},
		{param: "type", column: "type", kind: filterString},
	},
	search:   []string{"title"},
	ordering: map[string]string{"title": "title"},
	defaults: []string{"title"},
}

func GetVideos(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.Video{}), c, videoListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	videos := []models.Video{}
	if err := q.Find(&videos).Error; err != nil {
		respondDBError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, videos)
}

// CreateVideo defaults the type to the technical video kind.
func CreateVideo(c *gin.Context) {
	var input CreateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Type == "" {
		input.Type = models.VideoTechnical
	}
	if !models.ValidVideoType(input.Type) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid video type")
		return
	}

	video := models.Video{
		ProductID:    input.ProductID,
		Type:         input.Type,
		Title:        input.Title,
		ExternalLink: input.ExternalLink,
		YoutubeLink:  input.YoutubeLink,
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Product{}, video.ProductID); err != nil {
			return err
		}
		return tx.Create(&video).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Video", "Product")
		return
	}
	c.JSON(http.StatusCreated, video)
}

func GetVideo(c *gin.Context) {
	id, ok := parseIDParam(c, "video")
	if !ok {
		return
	}
	var video models.Video
	if err := dbFrom(c).First(&video, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, video)
}

func UpdateVideo(c *gin.Context) {
	id, ok := parseIDParam(c, "video")
	if !ok {
		return
	}

	var input UpdateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Type != nil && !models.ValidVideoType(*input.Type) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid video type")
		return
	}

	var video models.Video
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&video, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.ProductID != nil {
			if err := requireRow(tx, &models.Product{}, *input.ProductID); err != nil {
				return err
			}
			updates["product_id"] = *input.ProductID
		}
		if input.Type != nil {
			updates["type"] = *input.Type
		}
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.ExternalLink != nil {
			updates["external_link"] = *input.ExternalLink
		}
		if input.YoutubeLink != nil {
			updates["youtube_link"] = *input.YoutubeLink
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&video).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&video, "id = ?", id).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Video", "Product")
		return
	}
	c.JSON(http.StatusOK, video)
}

func DeleteVideo(c *gin.Context) {
	deleteByPolicy(c, "videos", "Video")
}
