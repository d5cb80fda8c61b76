package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// RequirementService answers which visa requirement applies between a
// passport country and a destination, backed by the passport-index
// dataset. The CSV is loaded once at startup; lookups are in-memory.
type RequirementService struct {
	index  map[string]string
	logger *logrus.Logger
}

// NewRequirementService loads the passport-index CSV. Expected columns:
// Passport, Destination, Requirement (ISO2 country codes).
func NewRequirementService(csvPath string, logger *logrus.Logger) (*RequirementService, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open requirements dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("requirements dataset is empty")
	}

	index := make(map[string]string, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 3 {
			continue
		}
		index[requirementKey(row[0], row[1])] = strings.TrimSpace(row[2])
	}

	logger.WithField("pairs", len(index)).Info("Visa requirements dataset loaded")

	return &RequirementService{index: index, logger: logger}, nil
}

// Lookup returns the requirement for the source passport travelling to
// the destination. Country codes are matched case-insensitively.
func (s *RequirementService) Lookup(source, destination string) (string, bool) {
	requirement, ok := s.index[requirementKey(source, destination)]
	return requirement, ok
}

func requirementKey(source, destination string) string {
	return strings.ToUpper(strings.TrimSpace(source)) + "|" + strings.ToUpper(strings.TrimSpace(destination))
}
