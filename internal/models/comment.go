package models

import "fmt"

// MaxCommentLength is the upper bound on free-form comment text.
const MaxCommentLength = 500

// PresetCategory classifies a comment preset key.
type PresetCategory string

const (
	PresetCategoryAllergen PresetCategory = "allergen"
	PresetCategoryDietary  PresetCategory = "dietary"
	PresetCategoryModifier PresetCategory = "modifier"
)

// PresetKey is a predefined tag attachable to an order item's comment.
type PresetKey string

const (
	// Allergen presets
	PresetGlutenFree    PresetKey = "gluten_free"
	PresetDairyFree     PresetKey = "dairy_free"
	PresetNutFree       PresetKey = "nut_free"
	PresetShellfishFree PresetKey = "shellfish_free"
	PresetEggFree       PresetKey = "egg_free"
	PresetSoyFree       PresetKey = "soy_free"

	// Dietary presets
	PresetVegan       PresetKey = "vegan"
	PresetVegetarian  PresetKey = "vegetarian"
	PresetHalal       PresetKey = "halal"
	PresetKosher      PresetKey = "kosher"
	PresetPescatarian PresetKey = "pescatarian"

	// Modifier presets
	PresetNoSalt      PresetKey = "no_salt"
	PresetNoOnion     PresetKey = "no_onion"
	PresetNoGarlic    PresetKey = "no_garlic"
	PresetExtraSpicy  PresetKey = "extra_spicy"
	PresetMild        PresetKey = "mild"
	PresetSauceOnSide PresetKey = "sauce_on_side"
	PresetWellDone    PresetKey = "well_done"
	PresetRare        PresetKey = "rare"
)

// presetCatalog is the fixed catalog of known preset keys. Keys outside
// the catalog are rejected at the boundary.
var presetCatalog = map[PresetKey]PresetCategory{
	PresetGlutenFree:    PresetCategoryAllergen,
	PresetDairyFree:     PresetCategoryAllergen,
	PresetNutFree:       PresetCategoryAllergen,
	PresetShellfishFree: PresetCategoryAllergen,
	PresetEggFree:       PresetCategoryAllergen,
	PresetSoyFree:       PresetCategoryAllergen,
	PresetVegan:         PresetCategoryDietary,
	PresetVegetarian:    PresetCategoryDietary,
	PresetHalal:         PresetCategoryDietary,
	PresetKosher:        PresetCategoryDietary,
	PresetPescatarian:   PresetCategoryDietary,
	PresetNoSalt:        PresetCategoryModifier,
	PresetNoOnion:       PresetCategoryModifier,
	PresetNoGarlic:      PresetCategoryModifier,
	PresetExtraSpicy:    PresetCategoryModifier,
	PresetMild:          PresetCategoryModifier,
	PresetSauceOnSide:   PresetCategoryModifier,
	PresetWellDone:      PresetCategoryModifier,
	PresetRare:          PresetCategoryModifier,
}

// CategoryOf returns the category of a known preset key.
func CategoryOf(key PresetKey) (PresetCategory, bool) {
	cat, ok := presetCatalog[key]
	return cat, ok
}

// Role identifies who may see a comment.
type Role string

const (
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleChef    Role = "chef"
	RoleManager Role = "manager"
)

var validRoles = map[Role]bool{
	RoleWaiter:  true,
	RoleKitchen: true,
	RoleChef:    true,
	RoleManager: true,
}

// Comment is an annotation attached to an order item: free text, preset
// tags from the fixed catalog, and a visibility set controlling which
// roles see it.
type Comment struct {
	Text       string      `json:"text"`
	Presets    []PresetKey `json:"presets,omitempty"`
	Visibility []Role      `json:"visibility"`
}

// NewComment validates and builds a comment. Text is capped at
// MaxCommentLength, preset keys must come from the catalog, and an
// empty visibility set defaults to kitchen-only. Duplicate presets and
// roles are collapsed.
func NewComment(text string, presets []PresetKey, visibility []Role) (*Comment, error) {
	if len(text) > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment text exceeds %d characters", ErrValidation, MaxCommentLength)
	}

	seen := make(map[PresetKey]bool, len(presets))
	keys := make([]PresetKey, 0, len(presets))
	for _, key := range presets {
		if _, ok := presetCatalog[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPresetKey, key)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	roles := make([]Role, 0, len(visibility))
	seenRoles := make(map[Role]bool, len(visibility))
	for _, role := range visibility {
		if !validRoles[role] {
			return nil, fmt.Errorf("%w: unknown visibility role %q", ErrValidation, role)
		}
		if !seenRoles[role] {
			seenRoles[role] = true
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		roles = []Role{RoleKitchen}
	}

	return &Comment{Text: text, Presets: keys, Visibility: roles}, nil
}

// HasPreset checks if the comment carries a specific preset key.
func (c *Comment) HasPreset(key PresetKey) bool {
	for _, k := range c.Presets {
		if k == key {
			return true
		}
	}
	return false
}

// VisibleTo checks if the comment is visible to a specific role.
func (c *Comment) VisibleTo(role Role) bool {
	for _, r := range c.Visibility {
		if r == role {
			return true
		}
	}
	return false
}

// AllergenPresets returns the subset of the comment's presets that
// belong to the allergen category.
func (c *Comment) AllergenPresets() []PresetKey {
	var out []PresetKey
	for _, key := range c.Presets {
		if presetCatalog[key] == PresetCategoryAllergen {
			out = append(out, key)
		}
	}
	return out
}

// ConflictsWithTableAllergens returns the intersection of the comment's
// allergen-category presets and the table's declared allergen set. A
// non-empty result surfaces a warning to the waiter; it never blocks
// the save.
func ConflictsWithTableAllergens(c *Comment, tableAllergens []PresetKey) []PresetKey {
	if c == nil || len(tableAllergens) == 0 {
		return nil
	}
	declared := make(map[PresetKey]bool, len(tableAllergens))
	for _, key := range tableAllergens {
		declared[key] = true
	}
	var conflicts []PresetKey
	for _, key := range c.AllergenPresets() {
		if declared[key] {
			conflicts = append(conflicts, key)
		}
	}
	return conflicts
}
