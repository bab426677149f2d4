package atom

import (
	"strings"

	"github.com/jasontalley/pact/errors"
)

// MaxDescriptionLen bounds atom descriptions on create and update.
const MaxDescriptionLen = 2000

// ValidateDescription checks the description constraints shared by create
// and update: non-empty after trimming, and within the length bound.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return errors.NewValidationf("description must not be empty")
	}
	if len(description) > MaxDescriptionLen {
		return errors.NewValidationf("description exceeds %d characters (got %d)", MaxDescriptionLen, len(description))
	}
	return nil
}
