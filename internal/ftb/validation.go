package ftb

import (
	"fmt"
	"regexp"
)

var (
	modRegex   = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,20}$`)
	sizesRegex = regexp.MustCompile(`^\d+(\|\d+)*$`)
)

// MaxListLimit caps the records returned by one MCP list call
const MaxListLimit = 500

// ValidateMod validates a mod abbreviation such as "GT" or "IC2".
func ValidateMod(mod string) error {
	if mod == "" {
		return fmt.Errorf("mod abbreviation is required")
	}
	if !modRegex.MatchString(mod) {
		return fmt.Errorf("invalid mod abbreviation %q: use up to 20 letters, digits, '-' or '_'", mod)
	}
	return nil
}

// ValidateSizes validates a "|"-separated list of tile sizes.
func ValidateSizes(sizes string) error {
	if !sizesRegex.MatchString(sizes) {
		return fmt.Errorf("invalid sizes %q: expected pixel sizes like 16|32", sizes)
	}
	return nil
}

// ValidateLimit validates the limit parameter.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if limit > MaxListLimit {
		return fmt.Errorf("limit cannot exceed %d", MaxListLimit)
	}
	return nil
}
