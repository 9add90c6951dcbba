package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendas-backend/models"
)

type CatalogCategory struct {
	Category string
	Products []string
}

// InitialProducts is the starting catalog, in the order codes are assigned.
var InitialProducts = []CatalogCategory{
	{Category: models.CategoryCompactadores, Products: []string{
		"Compactador de Solo VMR-75H",
		"Compactador De Solo VMR-60",
		"Compactador de Solo VMR-75R",
		"Compactador de Solo VMR-680",
		"Compactador De Solo VMR-75",
	}},
	{Category: models.CategoryPlacas, Products: []string{
		"Placa Vibratória Reversível VK-400",
		"Placa Vibratória Reversível VK-300",
		"Placa Vibratória VK-120",
		"Placa Vibratória VK-85",
	}},
	{Category: models.CategoryCortadoras, Products: []string{
		"Cortadora De Piso E Asfalto CPV-350",
		"Cortadora De Piso E Asfalto CPV-460",
	}},
	{Category: models.CategoryBombas, Products: []string{
		"Bomba De Mangote Compacta – 2 Pol",
		"Bomba De Mangote Em Ferro Fundido 2 Á 3 Pol",
		"Bomba Mangote Em Alumínio De 2 A 3 Pol",
	}},
	{Category: models.CategoryVibradores, Products: []string{
		"Vibrador De Concreto Portátil",
		"Vibrador De Imersão De Alta Frequência",
		"Vibrador De Concreto Pendular",
	}},
	{Category: models.CategoryMotores, Products: []string{
		"Motor Vibromak RM120-V",
		"Motovibrador À Gasolina",
		"Motor Elétrico Dupla Isolação",
	}},
	{Category: models.CategoryOutros, Products: []string{
		"Regua Vibratória RVVK",
	}},
}

type SeedResult struct {
	Created int
	Skipped int
	Codes   map[string]string // product name -> code
}

// SeedProducts assigns codes to the catalog and creates every product whose
// name is not yet stored. Codes already stored in the products table are
// avoided and the inserts share one transaction. With dryRun it only prints
// the plan to out and db may be nil.
func SeedProducts(db *gorm.DB, catalog []CatalogCategory, dryRun bool, out io.Writer) (SeedResult, error) {
	if dryRun {
		fmt.Fprintln(out, "PREVIEW MODE - no changes will be made")
		res, err := seedCatalog(db, catalog, true, out)
		if err == nil {
			slog.Info("product catalog previewed", "products", len(res.Codes))
		}
		return res, err
	}

	var res SeedResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = seedCatalog(tx, catalog, false, out)
		return err
	})
	if err != nil {
		return SeedResult{Codes: map[string]string{}}, err
	}
	slog.Info("product catalog seeded", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

func seedCatalog(db *gorm.DB, catalog []CatalogCategory, dryRun bool, out io.Writer) (SeedResult, error) {
	res := SeedResult{Codes: map[string]string{}}
	used := map[string]bool{}
	var stored CodeTaken
	if db != nil {
		stored = DBCodeTaken(db)
	}
	taken := func(code string) (bool, error) {
		if used[code] || stored == nil {
			return used[code], nil
		}
		return stored(code)
	}

	for _, cat := range catalog {
		if dryRun {
			fmt.Fprintf(out, "\nCategory: %s\n%s\n", cat.Category, strings.Repeat("-", 50))
		}

		counter := 1
		for _, name := range cat.Products {
			if db != nil {
				existing, err := findProductByName(db, name)
				if err != nil {
					return res, fmt.Errorf("seeding %q: %w", name, err)
				}
				if existing != nil {
					used[existing.Code] = true
					res.Codes[name] = existing.Code
					if dryRun {
						fmt.Fprintf(out, "Product: %s\nCode: %s (existing)\n", name, existing.Code)
					} else {
						res.Skipped++
						fmt.Fprintf(out, "Product already exists: %s\n", name)
					}
					continue
				}
			}

			code, next, err := GenerateProductCode(name, cat.Category, taken, counter)
			if err != nil {
				return res, err
			}
			counter = next
			used[code] = true
			res.Codes[name] = code

			if dryRun {
				fmt.Fprintf(out, "Product: %s\nCode: %s\n", name, code)
				continue
			}

			product := models.Product{
				Name:     name,
				Code:     code,
				Category: cat.Category,
				Price:    decimal.Zero,
				Specs:    models.JSONB{},
			}
			if err := db.Create(&product).Error; err != nil {
				return res, fmt.Errorf("seeding %q: %w", name, err)
			}
			res.Created++
			fmt.Fprintf(out, "Created product: %s (%s)\n", name, code)
		}
	}
	return res, nil
}

func findProductByName(db *gorm.DB, name string) (*models.Product, error) {
	var existing models.Product
	err := db.Where("name = ?", name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}
