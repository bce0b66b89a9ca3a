package enums

import "fmt"

// ProductCategory groups listings for browse/search filters.
type ProductCategory string

const (
	ProductCategoryFood     ProductCategory = "food"
	ProductCategoryCrafts   ProductCategory = "crafts"
	ProductCategoryClothing ProductCategory = "clothing"
	ProductCategoryHome     ProductCategory = "home"
	ProductCategoryServices ProductCategory = "services"
	ProductCategoryOther    ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryFood,
	ProductCategoryCrafts,
	ProductCategoryClothing,
	ProductCategoryHome,
	ProductCategoryServices,
	ProductCategoryOther,
}

// IsValid reports whether the value matches the canonical category enum.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts the raw string to ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
