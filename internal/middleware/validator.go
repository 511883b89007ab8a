package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateRecordID checks that a history or session id is a UUID.
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

// ValidateScore parses a risk score query value in 0..100.
func ValidateScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("score must be an integer")
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("score must be between 0 and 100")
	}
	return score, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// MaxPage bounds page numbers so that (page-1)*limit cannot overflow.
const MaxPage = 100000

// ValidatePage clamps a page number to at least 1 and rejects pages past MaxPage.
func ValidatePage(page int) (int, error) {
	if page <= 0 {
		return 1, nil
	}
	if page > MaxPage {
		return 0, fmt.Errorf("page must be at most %d", MaxPage)
	}
	return page, nil
}
