package enums

import "fmt"

// TransferStatus tracks an inventory transfer through the QC workflow.
type TransferStatus string

const (
	TransferStatusDraft      TransferStatus = "draft"
	TransferStatusSubmitted  TransferStatus = "submitted"
	TransferStatusQCApproved TransferStatus = "qc_approved"
	TransferStatusRejected   TransferStatus = "rejected"
	TransferStatusPosted     TransferStatus = "posted"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusDraft,
	TransferStatusSubmitted,
	TransferStatusQCApproved,
	TransferStatusRejected,
	TransferStatusPosted,
}

// transferTransitions lists the allowed next statuses for each status.
// Rejected transfers may be reopened back to draft; posted is terminal.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusDraft:      {TransferStatusSubmitted},
	TransferStatusSubmitted:  {TransferStatusQCApproved, TransferStatusRejected},
	TransferStatusQCApproved: {TransferStatusPosted},
	TransferStatusRejected:   {TransferStatusDraft},
	TransferStatusPosted:     {},
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, candidate := range transferTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
