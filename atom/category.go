package atom

import (
	"strings"

	"github.com/jasontalley/pact/errors"
)

// Category classifies what kind of requirement an atom expresses.
type Category string

const (
	CategoryFunctional      Category = "functional"
	CategoryPerformance     Category = "performance"
	CategorySecurity        Category = "security"
	CategoryReliability     Category = "reliability"
	CategoryUsability       Category = "usability"
	CategoryMaintainability Category = "maintainability"
)

// ParseCategory converts a string to a Category, rejecting unknown values.
// Matching is case-insensitive; the canonical form is lowercase.
func ParseCategory(s string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(s)))
	if !category.Valid() {
		return "", errors.NewValidationf("invalid atom category: %q (expected one of: functional, performance, security, reliability, usability, maintainability)", s)
	}
	return category, nil
}

// String returns the category as its canonical string form.
func (c Category) String() string {
	return string(c)
}

// Valid returns true if the category is a member of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryFunctional, CategoryPerformance, CategorySecurity,
		CategoryReliability, CategoryUsability, CategoryMaintainability:
		return true
	default:
		return false
	}
}

// Categories returns every valid category.
func Categories() []Category {
	return []Category{
		CategoryFunctional,
		CategoryPerformance,
		CategorySecurity,
		CategoryReliability,
		CategoryUsability,
		CategoryMaintainability,
	}
}
