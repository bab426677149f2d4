package atom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jasontalley/pact/errors"
)

// HumanIDPrefix prefixes every operator-facing atom identifier.
const HumanIDPrefix = "IA-"

var humanIDPattern = regexp.MustCompile(`^IA-\d+$`)

// FormatHumanID renders a sequence number as IA-NNN, zero-padded to three
// digits. Numbers past 999 keep their natural width (IA-1000).
func FormatHumanID(n int) string {
	return fmt.Sprintf("%s%03d", HumanIDPrefix, n)
}

// ParseHumanID extracts the numeric suffix from an IA-NNN identifier.
func ParseHumanID(humanID string) (int, error) {
	if !humanIDPattern.MatchString(humanID) {
		return 0, errors.NewValidationf("invalid human id: %q (expected IA-NNN)", humanID)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(humanID, HumanIDPrefix))
	if err != nil {
		return 0, errors.NewValidationf("invalid human id: %q (expected IA-NNN)", humanID)
	}
	return n, nil
}

// IsHumanID reports whether s has the IA-NNN shape. Used to distinguish
// operator-facing identifiers from opaque UUIDs when resolving lookups.
func IsHumanID(s string) bool {
	return humanIDPattern.MatchString(s)
}
