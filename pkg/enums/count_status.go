package enums

import "fmt"

// CountStatus tracks an inventory counting session.
type CountStatus string

const (
	CountStatusDraft     CountStatus = "draft"
	CountStatusSubmitted CountStatus = "submitted"
	CountStatusPosted    CountStatus = "posted"
	CountStatusCanceled  CountStatus = "canceled"
)

var validCountStatuses = []CountStatus{
	CountStatusDraft,
	CountStatusSubmitted,
	CountStatusPosted,
	CountStatusCanceled,
}

var countTransitions = map[CountStatus][]CountStatus{
	CountStatusDraft:     {CountStatusSubmitted, CountStatusCanceled},
	CountStatusSubmitted: {CountStatusPosted, CountStatusCanceled},
	CountStatusPosted:    {},
	CountStatusCanceled:  {},
}

// String implements fmt.Stringer.
func (s CountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CountStatus.
func (s CountStatus) IsValid() bool {
	for _, candidate := range validCountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s CountStatus) CanTransitionTo(next CountStatus) bool {
	for _, candidate := range countTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseCountStatus converts raw input into a CountStatus.
func ParseCountStatus(value string) (CountStatus, error) {
	for _, candidate := range validCountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid count status %q", value)
}
