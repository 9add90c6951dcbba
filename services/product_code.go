package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"vendas-backend/models"
)

// CodeTaken reports whether a product code is already in use.
type CodeTaken func(code string) (bool, error)

// GenerateProductCode derives a product code from its name and category and
// appends -<counter> until taken reports the candidate as free. It returns
// the code and the counter to use for the next product of the category.
func GenerateProductCode(name, category string, taken CodeTaken, counter int) (string, int, error) {
	base := baseProductCode(name, category)

	code := base
	for {
		used, err := taken(code)
		if err != nil {
			return "", counter, err
		}
		if !used {
			return code, counter, nil
		}
		code = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}

func baseProductCode(name, category string) string {
	prefix := categoryPrefix(category)

	switch category {
	case models.CategoryBombas:
		switch {
		case strings.Contains(name, "Compacta"):
			return prefix + "-MC-2"
		case strings.Contains(name, "Ferro"):
			return prefix + "-MF-23"
		default:
			return prefix + "-MA-23"
		}
	case models.CategoryVibradores:
		switch {
		case strings.Contains(name, "Portátil"):
			return prefix + "-CP"
		case strings.Contains(name, "Imersão"):
			return prefix + "-IAF"
		default:
			return prefix + "-CPE"
		}
	case models.CategoryMotores:
		switch {
		case strings.Contains(name, "RM120"):
			return prefix + "-RM120"
		case strings.Contains(name, "Gasolina"):
			return prefix + "-GAS"
		default:
			return prefix + "-ELE"
		}
	}

	parts := []string{prefix}
	tokens := strings.Fields(name)

	var numeric []string
	for _, t := range tokens {
		if strings.IndexFunc(t, unicode.IsDigit) >= 0 {
			numeric = append(numeric, t)
		}
	}
	if len(numeric) > 0 {
		parts = append(parts, numeric...)
	} else {
		for _, t := range tokens {
			if isUpperToken(t) {
				parts = append(parts, t)
			}
		}
	}

	return strings.Join(parts, "-")
}

func categoryPrefix(category string) string {
	r := []rune(category)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// isUpperToken is true when t has at least one cased letter and none of them
// is lower case.
func isUpperToken(t string) bool {
	cased := false
	for _, r := range t {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// DBCodeTaken checks codes against the products table.
func DBCodeTaken(db *gorm.DB) CodeTaken {
	return func(code string) (bool, error) {
		var p models.Product
		err := db.Select("id").Where("code = ?", code).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
}
