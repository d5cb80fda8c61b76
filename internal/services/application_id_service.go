package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// applicationIDChecker reports whether a human-facing code is already taken
type applicationIDChecker interface {
	ApplicationIDExists(applicationID string) (bool, error)
}

// maxIDAttempts bounds the collision retry loop. The database unique
// index remains the final arbiter under concurrency.
const maxIDAttempts = 20

// ApplicationIDService generates human-facing visa application codes of
// the form <destination code><DDMMYYHHmm><purpose code>.
type ApplicationIDService struct {
	checker applicationIDChecker
	now     func() time.Time
}

// NewApplicationIDService creates a new application id service
func NewApplicationIDService(checker applicationIDChecker) *ApplicationIDService {
	return &ApplicationIDService{
		checker: checker,
		now:     time.Now,
	}
}

// ShortCode derives a short code from free text: trim, take the first
// three characters, drop anything that is not a letter, uppercase, then
// pad with "NA" up to at least three characters. Padding can push the
// result to four characters when two letters survive; existing codes
// were issued that way and it stays.
func ShortCode(s string) string {
	trimmed := strings.TrimSpace(s)

	runes := []rune(trimmed)
	if len(runes) > 3 {
		runes = runes[:3]
	}

	var b strings.Builder
	for _, r := range runes {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	code := b.String()
	for len(code) < 3 {
		code += "NA"
	}

	return code
}

// Generate builds a unique application code from destination and purpose.
// On collision a numeric suffix is appended, counting up from 1.
func (s *ApplicationIDService) Generate(destination, purpose string) (string, error) {
	base := ShortCode(destination) + s.now().Format("0201061504") + ShortCode(purpose)

	candidate := base
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		exists, err := s.checker.ApplicationIDExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check application id: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, attempt+1)
	}

	return "", fmt.Errorf("failed to generate unique application id after %d attempts", maxIDAttempts)
}
