package enums

import "fmt"

// UnitOfMeasure is the unit a product's quantity is counted in.
type UnitOfMeasure string

const (
	UnitOfMeasurePiece UnitOfMeasure = "pcs"
	UnitOfMeasureKg    UnitOfMeasure = "kg"
	UnitOfMeasureLiter UnitOfMeasure = "liter"
	UnitOfMeasureBox   UnitOfMeasure = "box"
)

var validUnitsOfMeasure = []UnitOfMeasure{
	UnitOfMeasurePiece,
	UnitOfMeasureKg,
	UnitOfMeasureLiter,
	UnitOfMeasureBox,
}

// String implements fmt.Stringer.
func (u UnitOfMeasure) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitOfMeasure.
func (u UnitOfMeasure) IsValid() bool {
	for _, candidate := range validUnitsOfMeasure {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitOfMeasure converts raw input into a UnitOfMeasure.
func ParseUnitOfMeasure(value string) (UnitOfMeasure, error) {
	for _, candidate := range validUnitsOfMeasure {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit of measure %q", value)
}
