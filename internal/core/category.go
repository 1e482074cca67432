package core

import "strings"

// Category is one label from the closed expense taxonomy. The set is fixed
// at compile time; free text never reaches the ledger.
type Category string

const (
	CategoryFood          Category = "Food & Dining"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryBusiness      Category = "Business"
	CategoryGifts         Category = "Gifts"
	CategoryTechnology    Category = "Technology"
	CategoryFitness       Category = "Fitness"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

var categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryBusiness,
	CategoryGifts,
	CategoryTechnology,
	CategoryFitness,
	CategoryTravel,
	CategoryOther,
}

// Categories returns the full taxonomy in display order. Callers must not
// mutate the returned slice.
func Categories() []Category {
	return categories
}

// ParseCategory maps a submitted label onto the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
