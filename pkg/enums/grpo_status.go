package enums

import "fmt"

// GRPOStatus tracks a goods receipt draft from creation to ERP posting.
type GRPOStatus string

const (
	GRPOStatusDraft     GRPOStatus = "draft"
	GRPOStatusSubmitted GRPOStatus = "submitted"
	GRPOStatusApproved  GRPOStatus = "approved"
	GRPOStatusRejected  GRPOStatus = "rejected"
	GRPOStatusPosted    GRPOStatus = "posted"
)

var validGRPOStatuses = []GRPOStatus{
	GRPOStatusDraft,
	GRPOStatusSubmitted,
	GRPOStatusApproved,
	GRPOStatusRejected,
	GRPOStatusPosted,
}

var grpoTransitions = map[GRPOStatus][]GRPOStatus{
	GRPOStatusDraft:     {GRPOStatusSubmitted},
	GRPOStatusSubmitted: {GRPOStatusApproved, GRPOStatusRejected},
	GRPOStatusApproved:  {GRPOStatusPosted},
	GRPOStatusRejected:  {GRPOStatusDraft},
	GRPOStatusPosted:    {},
}

// String implements fmt.Stringer.
func (s GRPOStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known GRPOStatus.
func (s GRPOStatus) IsValid() bool {
	for _, candidate := range validGRPOStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s GRPOStatus) CanTransitionTo(next GRPOStatus) bool {
	for _, candidate := range grpoTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseGRPOStatus converts raw input into a GRPOStatus.
func ParseGRPOStatus(value string) (GRPOStatus, error) {
	for _, candidate := range validGRPOStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goods receipt status %q", value)
}
