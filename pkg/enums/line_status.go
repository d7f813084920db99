package enums

import "fmt"

// LineStatus tracks how much of a purchase order line has been received.
type LineStatus string

const (
	LineStatusPending           LineStatus = "pending"
	LineStatusPartiallyReceived LineStatus = "partially_received"
	LineStatusReceived          LineStatus = "received"
)

var validLineStatuses = []LineStatus{
	LineStatusPending,
	LineStatusPartiallyReceived,
	LineStatusReceived,
}

// String implements fmt.Stringer.
func (l LineStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineStatus.
func (l LineStatus) IsValid() bool {
	for _, candidate := range validLineStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineStatus converts raw input into a LineStatus.
func ParseLineStatus(value string) (LineStatus, error) {
	for _, candidate := range validLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line status %q", value)
}
