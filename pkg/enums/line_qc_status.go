package enums

import "fmt"

// LineQCStatus is the per-line QC disposition on receipts and transfers.
// Lines start pending and follow the document-level decision.
type LineQCStatus string

const (
	LineQCStatusPending  LineQCStatus = "pending"
	LineQCStatusApproved LineQCStatus = "approved"
	LineQCStatusRejected LineQCStatus = "rejected"
)

var validLineQCStatuses = []LineQCStatus{
	LineQCStatusPending,
	LineQCStatusApproved,
	LineQCStatusRejected,
}

// String implements fmt.Stringer.
func (s LineQCStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LineQCStatus.
func (s LineQCStatus) IsValid() bool {
	for _, candidate := range validLineQCStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLineQCStatus converts raw input into a LineQCStatus.
func ParseLineQCStatus(value string) (LineQCStatus, error) {
	for _, candidate := range validLineQCStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line qc status %q", value)
}
