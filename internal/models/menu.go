package models

import "fmt"

// MenuItem represents a dish offered for ordering. Order items capture
// the unit price at placement time, so later menu edits never change a
// placed order's totals.
type MenuItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Course      CourseType  `json:"course"`
	Price       float64     `json:"price"`
	Allergens   []PresetKey `json:"allergens,omitempty"`
	Available   bool        `json:"available"`
}

// ValidateMenuItem validates a menu item before it is offered.
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: menu item name is required", ErrValidation)
	}
	if item.Price <= 0 {
		return fmt.Errorf("%w: menu item price must be greater than 0", ErrValidation)
	}
	if !item.Course.IsValid() {
		return fmt.Errorf("%w: unknown course type %q", ErrValidation, item.Course)
	}
	for _, key := range item.Allergens {
		cat, ok := presetCatalog[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidPresetKey, key)
		}
		if cat != PresetCategoryAllergen {
			return fmt.Errorf("%w: %q is not an allergen preset", ErrValidation, key)
		}
	}
	return nil
}

// HasAllergen checks if the dish carries a specific allergen tag.
func (mi *MenuItem) HasAllergen(key PresetKey) bool {
	for _, k := range mi.Allergens {
		if k == key {
			return true
		}
	}
	return false
}
