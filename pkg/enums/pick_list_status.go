package enums

import "fmt"

// PickListStatus tracks a pick list from release to closure.
type PickListStatus string

const (
	PickListStatusOpen     PickListStatus = "open"
	PickListStatusPicking  PickListStatus = "picking"
	PickListStatusPicked   PickListStatus = "picked"
	PickListStatusClosed   PickListStatus = "closed"
	PickListStatusCanceled PickListStatus = "canceled"
)

var validPickListStatuses = []PickListStatus{
	PickListStatusOpen,
	PickListStatusPicking,
	PickListStatusPicked,
	PickListStatusClosed,
	PickListStatusCanceled,
}

var pickListTransitions = map[PickListStatus][]PickListStatus{
	PickListStatusOpen:     {PickListStatusPicking, PickListStatusCanceled},
	PickListStatusPicking:  {PickListStatusPicked, PickListStatusCanceled},
	PickListStatusPicked:   {PickListStatusClosed},
	PickListStatusClosed:   {},
	PickListStatusCanceled: {},
}

// String implements fmt.Stringer.
func (s PickListStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PickListStatus.
func (s PickListStatus) IsValid() bool {
	for _, candidate := range validPickListStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s PickListStatus) CanTransitionTo(next PickListStatus) bool {
	for _, candidate := range pickListTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParsePickListStatus converts raw input into a PickListStatus.
func ParsePickListStatus(value string) (PickListStatus, error) {
	for _, candidate := range validPickListStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pick list status %q", value)
}
