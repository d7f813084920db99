package enums

import "fmt"

// MovementType classifies a stock movement. Ledger quantities are always
// strictly positive; the type alone encodes direction: "in" and "release"
// add to on-hand stock, "out" and "reserve" subtract from it. "adjustment"
// rows store the magnitude only; the operation recording the adjustment
// supplies the signed on-hand delta and the row note records the direction.
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReserve    MovementType = "reserve"
	MovementTypeRelease    MovementType = "release"
)

var validMovementTypes = []MovementType{
	MovementTypeIn,
	MovementTypeOut,
	MovementTypeAdjustment,
	MovementTypeReserve,
	MovementTypeRelease,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Direction returns +1 for types that add to on-hand stock, -1 for types
// that subtract, and 0 for adjustment (the caller supplies the signed delta).
func (m MovementType) Direction() int {
	switch m {
	case MovementTypeIn, MovementTypeRelease:
		return 1
	case MovementTypeOut, MovementTypeReserve:
		return -1
	default:
		return 0
	}
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
