package enums

import "fmt"

// IngredientUnit is the base unit ingredient stock is counted in.
// Stock and recipe quantities are integers in this unit.
type IngredientUnit string

const (
	IngredientUnitMilliliter IngredientUnit = "ml"
	IngredientUnitGram       IngredientUnit = "g"
	IngredientUnitPiece      IngredientUnit = "pcs"
)

var validIngredientUnits = []IngredientUnit{
	IngredientUnitMilliliter,
	IngredientUnitGram,
	IngredientUnitPiece,
}

// String implements fmt.Stringer.
func (u IngredientUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known IngredientUnit.
func (u IngredientUnit) IsValid() bool {
	for _, candidate := range validIngredientUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseIngredientUnit converts raw input into an IngredientUnit.
func ParseIngredientUnit(value string) (IngredientUnit, error) {
	for _, candidate := range validIngredientUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ingredient unit %q", value)
}
