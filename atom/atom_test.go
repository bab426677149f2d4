package atom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/internal/util"
)

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription("user can reset their password via emailed link"))

	err := ValidateDescription("")
	assert.True(t, errors.IsValidation(err))

	err = ValidateDescription("   \t\n ")
	assert.True(t, errors.IsValidation(err), "whitespace-only description should fail")

	err = ValidateDescription(strings.Repeat("x", MaxDescriptionLen+1))
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "2000")
}

func TestAtomEffectiveScore(t *testing.T) {
	a := &Atom{}
	assert.Equal(t, 0, a.EffectiveScore(), "nil score coerces to zero")

	a.QualityScore = util.Ptr(85)
	assert.Equal(t, 85, a.EffectiveScore())
}

func TestAtomHasTag(t *testing.T) {
	a := &Atom{Tags: []string{"auth", "mvp"}}
	assert.True(t, a.HasTag("auth"))
	assert.False(t, a.HasTag("billing"))
}

func TestAtomMutable(t *testing.T) {
	a := &Atom{Status: StatusDraft}
	assert.True(t, a.Mutable())

	a.Status = StatusCommitted
	assert.False(t, a.Mutable())
}

func TestRefinementSourceValid(t *testing.T) {
	assert.True(t, SourceUser.Valid())
	assert.True(t, SourceAI.Valid())
	assert.True(t, SourceSystem.Valid())
	assert.False(t, RefinementSource("bot").Valid())
}
