package reportstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameFallbackChain(t *testing.T) {
	tests := []struct {
		name          string
		profile       *Profile
		fallbackEmail string
		want          string
	}{
		{
			name:    "first and last name",
			profile: &Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
			want:    "Jane Doe",
		},
		{
			name:    "first name only",
			profile: &Profile{FirstName: "Jane", Email: "jane@example.com"},
			want:    "Jane",
		},
		{
			name:    "empty names fall back to profile email",
			profile: &Profile{Email: "a@b.com"},
			want:    "a@b.com",
		},
		{
			name:    "whitespace names fall back to profile email",
			profile: &Profile{FirstName: "  ", LastName: " ", Email: "a@b.com"},
			want:    "a@b.com",
		},
		{
			name:          "no profile falls back to identity email",
			profile:       nil,
			fallbackEmail: "me@example.com",
			want:          "me@example.com",
		},
		{
			name:    "no profile and no email",
			profile: nil,
			want:    UnknownUserName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.profile, tt.fallbackEmail))
		})
	}
}

func TestDraftDefaults(t *testing.T) {
	d := Draft{Title: "Spill"}.withDefaults()
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, SeverityMedium, d.Severity)

	d = Draft{Title: "Spill", Status: StatusInvestigating, Severity: SeverityCritical}.withDefaults()
	assert.Equal(t, StatusInvestigating, d.Status)
	assert.Equal(t, SeverityCritical, d.Severity)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusInvestigating.Valid())
	assert.True(t, StatusResolved.Valid())
	assert.False(t, Status("rejected").Valid())
	assert.False(t, Status("").Valid())
}

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityLow.Valid())
	assert.True(t, SeverityCritical.Valid())
	assert.False(t, Severity("urgent").Valid())
	assert.False(t, Severity("").Valid())
}
