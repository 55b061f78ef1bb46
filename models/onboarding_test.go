package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCurrentStatus(t *testing.T) {
	cases := []struct {
		name        string
		application string
		identity    string
		contact     string
		training    string
		expected    string
	}{
		{
			name:        "all pending",
			application: StatusPending, identity: StatusPending, contact: StatusPending, training: StatusPending,
			expected:    StatusPending,
		},
		{
			name:        "all completed",
			application: StatusCompleted, identity: StatusCompleted, contact: StatusCompleted, training: StatusCompleted,
			expected:    StatusCompleted,
		},
		{
			name:        "rejection dominates",
			application: StatusPending, identity: StatusRejected, contact: StatusCompleted, training: StatusCompleted,
			expected:    StatusRejected,
		},
		{
			name:        "rejection dominates even when certified",
			application: StatusCompleted, identity: StatusCompleted, contact: StatusRejected, training: StatusCompleted,
			expected:    StatusRejected,
		},
		{
			name:        "identity and training complete short-circuits",
			application: StatusCompleted, identity: StatusCompleted, contact: StatusPending, training: StatusCompleted,
			expected:    StatusCompleted,
		},
		{
			name:        "mixed progress is in review",
			application: StatusCompleted, identity: StatusPending, contact: StatusPending, training: StatusPending,
			expected:    StatusInReview,
		},
		{
			name:        "training in review",
			application: StatusCompleted, identity: StatusCompleted, contact: StatusCompleted, training: StatusInReview,
			expected:    StatusInReview,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := DeriveCurrentStatus(tc.application, tc.identity, tc.contact, tc.training)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
