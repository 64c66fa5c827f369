package enums

import "fmt"

// ServiceCategory pairs a service with one of the practice's two billing
// books.
type ServiceCategory string

const (
	ServiceCategoryWhite ServiceCategory = "WHITE"
	ServiceCategoryBlack ServiceCategory = "BLACK"
)

var validServiceCategories = []ServiceCategory{
	ServiceCategoryWhite,
	ServiceCategoryBlack,
}

// String implements fmt.Stringer.
func (c ServiceCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseServiceCategory converts raw input into a ServiceCategory.
func ParseServiceCategory(value string) (ServiceCategory, error) {
	for _, candidate := range validServiceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}
