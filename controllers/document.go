package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

// maxUploadSize bounds multipart document uploads.
const maxUploadSize = 50 << 20

type CreateDocumentInput struct {
	ProductID     uuid.UUID `json:"product" binding:"required"`
	Type          string    `json:"type" binding:"required"`
	Title         string    `json:"title" binding:"required,max=200"`
	ExternalLink  string    `json:"external_link" binding:"omitempty,url"`
	NextcloudLink string    `json:"nextcloud_link" binding:"omitempty,url"`
}

type UpdateDocumentInput struct {
	ProductID     *uuid.UUID `json:"product"`
	Type          *string    `json:"type"`
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	ExternalLink  *string    `json:"external_link" binding:"omitempty,url"`
	NextcloudLink *string    `json:"nextcloud_link" binding:"omitempty,url"`
}

var documentListOptions = listOptions{
	filters: []queryFilter{
		{param: "product", column: "product_id", kind: filterUUID},
		{param: "type", column: "type", kind: filterString},
	},
	search:   []string{"title"},
	ordering: map[string]string{"title": "title"},
	defaults: []string{"title"},
}

// DocumentController holds the file storage used for uploads. Storage may
// be nil, in which case uploads answer 503.
type DocumentController struct {
	Storage services.FileStorage
}

func GetDocuments(c *gin.Context) {
	q, err := listQuery(dbFrom(c).Model(&models.Document{}), c, documentListOptions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	documents := []models.Document{}
	if err := q.Find(&documents).Error; err != nil {
		respondDBError(c, err, "Document")
		return
	}
	c.JSON(http.StatusOK, documents)
}

func CreateDocument(c *gin.Context) {
	var input CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidDocumentType(input.Type) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid document type")
		return
	}

	document := models.Document{
		ProductID:     input.ProductID,
		Type:          input.Type,
		Title:         input.Title,
		ExternalLink:  input.ExternalLink,
		NextcloudLink: input.NextcloudLink,
	}

	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Product{}, document.ProductID); err != nil {
			return err
		}
		return tx.Create(&document).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Document", "Product")
		return
	}
	c.JSON(http.StatusCreated, document)
}

func GetDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}
	var document models.Document
	if err := dbFrom(c).First(&document, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Document")
		return
	}
	c.JSON(http.StatusOK, document)
}

func UpdateDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	var input UpdateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Type != nil && !models.ValidDocumentType(*input.Type) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid document type")
		return
	}

	var document models.Document
	err := dbFrom(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&document, "id = ?", id).Error; err != nil {
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
		if input.NextcloudLink != nil {
			updates["nextcloud_link"] = *input.NextcloudLink
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&document).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&document, "id = ?", id).Error
	})
	if err != nil {
		respondReferenceError(c, err, "Document", "Product")
		return
	}
	c.JSON(http.StatusOK, document)
}

func DeleteDocument(c *gin.Context) {
	deleteByPolicy(c, "documents", "Document")
}

// UploadDocument stores the multipart "file" and points the document's
// external link at it.
func (dc *DocumentController) UploadDocument(c *gin.Context) {
	if dc.Storage == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "File storage is not configured")
		return
	}

	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	var document models.Document
	if err := dbFrom(c).First(&document, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Document")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "File is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("products/%s/documents/%s%s", document.ProductID, document.ID, strings.ToLower(path.Ext(header.Filename)))
	url, err := dc.Storage.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, services.ErrStorageNotConfigured) {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "File storage is not configured")
			return
		}
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to upload file")
		return
	}

	if err := dbFrom(c).Model(&document).Update("external_link", url).Error; err != nil {
		respondDBError(c, err, "Document")
		return
	}
	document.ExternalLink = url
	c.JSON(http.StatusOK, document)
}
