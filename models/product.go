package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CategoryCompactadores = "compactadores"
	CategoryPlacas        = "placas"
	CategoryCortadoras    = "cortadoras"
	CategoryBombas        = "bombas"
	CategoryVibradores    = "vibradores"
	CategoryMotores       = "motores"
	CategoryOutros        = "outros"
)

// Categories keeps the display order used by the catalog.
var Categories = []string{
	CategoryCompactadores,
	CategoryPlacas,
	CategoryCortadoras,
	CategoryBombas,
	CategoryVibradores,
	CategoryMotores,
	CategoryOutros,
}

var categoryLabels = map[string]string{
	CategoryCompactadores: "Compactadores de Solo",
	CategoryPlacas:        "Placas Vibratórias",
	CategoryCortadoras:    "Cortadoras",
	CategoryBombas:        "Bombas",
	CategoryVibradores:    "Vibradores",
	CategoryMotores:       "Motores",
	CategoryOutros:        "Outros",
}

func CategoryLabel(category string) string {
	return categoryLabels[category]
}

func ValidCategory(category string) bool {
	_, ok := categoryLabels[category]
	return ok
}

type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name     string          `gorm:"size:200;not null;index" json:"name"`
	Code     string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Category string          `gorm:"size:100;not null;index" json:"category"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Specs    JSONB           `json:"specs"`

	Documents []Document `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"documents"`
	Videos    []Video    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"videos"`

	CategoryDisplay string `gorm:"-" json:"category_display"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Specs == nil {
		p.Specs = JSONB{}
	}
	return
}

func (p *Product) AfterFind(tx *gorm.DB) (err error) {
	p.CategoryDisplay = CategoryLabel(p.Category)
	for i := range p.Documents {
		p.Documents[i].TypeDisplay = documentTypeLabels[p.Documents[i].Type]
	}
	for i := range p.Videos {
		p.Videos[i].TypeDisplay = videoTypeLabels[p.Videos[i].Type]
	}
	return
}

func ValidDocumentType(t string) bool {
	_, ok := documentTypeLabels[t]
	return ok
}

func ValidVideoType(t string) bool {
	_, ok := videoTypeLabels[t]
	return ok
}

func (p *Product) AfterSave(tx *gorm.DB) (err error) {
	p.CategoryDisplay = CategoryLabel(p.Category)
	return
}

const (
	DocumentExplodedView = "vista_explodida"
	DocumentManual       = "manual"
	VideoTechnical       = "tecnico"
)

var documentTypeLabels = map[string]string{
	DocumentExplodedView: "Vista Explodida",
	DocumentManual:       "Manual",
}

var videoTypeLabels = map[string]string{
	VideoTechnical: "Vídeo Técnico",
}

type Document struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID     uuid.UUID `gorm:"type:uuid;index;not null" json:"product"`
	Type          string    `gorm:"size:20;not null" json:"type"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	ExternalLink  string    `json:"external_link"`
	NextcloudLink string    `json:"nextcloud_link"`

	TypeDisplay string `gorm:"-" json:"type_display"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

func (d *Document) AfterFind(tx *gorm.DB) (err error) {
	d.TypeDisplay = documentTypeLabels[d.Type]
	return
}

func (d *Document) AfterSave(tx *gorm.DB) (err error) {
	d.TypeDisplay = documentTypeLabels[d.Type]
	return
}

type Video struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;index;not null" json:"product"`
	Type         string    `gorm:"size:20;not null" json:"type"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	ExternalLink string    `json:"external_link"`
	YoutubeLink  string    `json:"youtube_link"`

	TypeDisplay string `gorm:"-" json:"type_display"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

func (v *Video) AfterFind(tx *gorm.DB) (err error) {
	v.TypeDisplay = videoTypeLabels[v.Type]
	return
}

func (v *Video) AfterSave(tx *gorm.DB) (err error) {
	v.TypeDisplay = videoTypeLabels[v.Type]
	return
}
