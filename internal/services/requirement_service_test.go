package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRequirementsCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "passport-index.csv")
	data := "Passport,Destination,Requirement\n" +
		"IN,DE,visa required\n" +
		"IN,NP,visa free\n" +
		"US,GB,90\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRequirementService_Lookup(t *testing.T) {
	svc, err := NewRequirementService(writeRequirementsCSV(t), logrus.New())
	require.NoError(t, err)

	requirement, ok := svc.Lookup("IN", "DE")
	assert.True(t, ok)
	assert.Equal(t, "visa required", requirement)

	requirement, ok = svc.Lookup("us", "gb")
	assert.True(t, ok, "codes match case-insensitively")
	assert.Equal(t, "90", requirement)

	_, ok = svc.Lookup("IN", "US")
	assert.False(t, ok)
}

func TestRequirementService_MissingFile(t *testing.T) {
	_, err := NewRequirementService(filepath.Join(t.TempDir(), "nope.csv"), logrus.New())
	assert.Error(t, err)
}

func TestRequirementService_EmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("Passport,Destination,Requirement\n"), 0o644))

	_, err := NewRequirementService(path, logrus.New())
	assert.Error(t, err)
}
