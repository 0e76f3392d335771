package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TransferStatus
		to      TransferStatus
		allowed bool
	}{
		{TransferStatusDraft, TransferStatusSubmitted, true},
		{TransferStatusDraft, TransferStatusQCApproved, false},
		{TransferStatusSubmitted, TransferStatusQCApproved, true},
		{TransferStatusSubmitted, TransferStatusRejected, true},
		{TransferStatusSubmitted, TransferStatusPosted, false},
		{TransferStatusQCApproved, TransferStatusPosted, true},
		{TransferStatusQCApproved, TransferStatusRejected, false},
		{TransferStatusRejected, TransferStatusDraft, true},
		{TransferStatusRejected, TransferStatusSubmitted, false},
		{TransferStatusPosted, TransferStatusDraft, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTransferStatusTerminal(t *testing.T) {
	assert.True(t, TransferStatusPosted.IsTerminal())
	assert.False(t, TransferStatusRejected.IsTerminal())
}

func TestParseTransferStatus(t *testing.T) {
	status, err := ParseTransferStatus("qc_approved")
	require.NoError(t, err)
	assert.Equal(t, TransferStatusQCApproved, status)

	_, err = ParseTransferStatus("approved")
	require.Error(t, err)
}
