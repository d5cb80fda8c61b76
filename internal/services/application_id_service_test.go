package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIDChecker struct {
	taken map[string]bool
	err   error
	calls []string
}

func (f *fakeIDChecker) ApplicationIDExists(applicationID string) (bool, error) {
	f.calls = append(f.calls, applicationID)
	if f.err != nil {
		return false, f.err
	}
	return f.taken[applicationID], nil
}

func TestShortCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain country", "France", "FRA"},
		{"lowercase", "india", "IND"},
		{"leading whitespace", "  Germany", "GER"},
		{"short word pads", "It", "ITNA"},
		{"single letter pads", "A", "ANA"},
		{"empty pads fully", "", "NANA"},
		{"digits dropped then pads", "4K Tours", "KNA"},
		{"symbols dropped", "U.S", "USNA"},
		{"only symbols", "##!", "NANA"},
		{"unicode letters kept", "Ägypten", "ÄGY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortCode(tt.input))
		})
	}
}

func TestGenerate_Format(t *testing.T) {
	checker := &fakeIDChecker{taken: map[string]bool{}}
	svc := NewApplicationIDService(checker)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)
	}

	id, err := svc.Generate("France", "Tourism")
	require.NoError(t, err)

	// destination code + DDMMYYHHmm + purpose code
	assert.Equal(t, "FRA0703251405TOU", id)
}

func TestGenerate_CollisionSuffix(t *testing.T) {
	base := "FRA0703251405TOU"
	checker := &fakeIDChecker{taken: map[string]bool{
		base:       true,
		base + "1": true,
	}}
	svc := NewApplicationIDService(checker)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)
	}

	id, err := svc.Generate("France", "Tourism")
	require.NoError(t, err)
	assert.Equal(t, base+"2", id)
}

type alwaysTaken struct{}

func (alwaysTaken) ApplicationIDExists(string) (bool, error) { return true, nil }

func TestGenerate_GivesUpAfterMaxAttempts(t *testing.T) {
	svc := NewApplicationIDService(alwaysTaken{})

	_, err := svc.Generate("France", "Tourism")
	assert.Error(t, err)
}

func TestGenerate_CheckerError(t *testing.T) {
	checker := &fakeIDChecker{err: errors.New("db down")}
	svc := NewApplicationIDService(checker)

	_, err := svc.Generate("France", "Tourism")
	assert.Error(t, err)
}
