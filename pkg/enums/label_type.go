package enums

import "fmt"

// LabelType distinguishes the label payload formats the printer consumes.
type LabelType string

const (
	LabelTypeQR      LabelType = "qr"
	LabelTypeBarcode LabelType = "barcode"
)

var validLabelTypes = []LabelType{
	LabelTypeQR,
	LabelTypeBarcode,
}

// String implements fmt.Stringer.
func (l LabelType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LabelType.
func (l LabelType) IsValid() bool {
	for _, candidate := range validLabelTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLabelType converts raw input into a LabelType.
func ParseLabelType(value string) (LabelType, error) {
	for _, candidate := range validLabelTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid label type %q", value)
}
