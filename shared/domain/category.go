package domain

import (
	"encoding/json"
	"fmt"
)

// Category is the closed set of post categories the backend accepts.
type Category string

const (
	CategoryCoding              Category = "CODING"
	CategorySoftwareDevelopment Category = "SOFTWARE_DEVELOPMENT"
	CategoryCybersecurity       Category = "CYBERSECURITY"
	CategoryDataScience         Category = "DATA_SCIENCE"
	CategoryOther               Category = "OTHER"
)

var categoryLabels = map[Category]string{
	CategoryCoding:              "Coding",
	CategorySoftwareDevelopment: "Software Development",
	CategoryCybersecurity:       "Cybersecurity",
	CategoryDataScience:         "Data Science",
	CategoryOther:               "Other",
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCoding,
		CategorySoftwareDevelopment,
		CategoryCybersecurity,
		CategoryDataScience,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// UnmarshalJSON rejects values outside the closed set. The empty string is
// accepted so that an unselected category round-trips.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*c = ""
		return nil
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
