package registry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

func TestExportImportRoundTrip(t *testing.T) {
	source, _ := newTestRegistry(t)

	_, err := source.Create(context.Background(), CreateRequest{
		Description: "Two-factor prompt appears on new device login",
		Category:    atom.CategorySecurity,
		Tags:        []string{"auth", "mfa"},
		ObservableOutcomes: []atom.OutcomeClause{
			{Description: "prompt is visible", Signal: "ui"},
		},
		FalsifiabilityCriteria: []atom.CriterionClause{
			{Description: "login from unseen device without prompt", Measurable: true},
		},
	})
	require.NoError(t, err)
	createCommitted(t, source, "Committed behavior travels too")

	var buf bytes.Buffer
	require.NoError(t, source.ExportYAML(context.Background(), &buf))

	exported := buf.String()
	assert.Contains(t, exported, "exported_at:")
	assert.Contains(t, exported, "IA-001")
	assert.Contains(t, exported, "IA-002")
	assert.Contains(t, exported, "Two-factor prompt appears on new device login")

	target, _ := newTestRegistry(t)
	imported, err := target.ImportYAML(context.Background(), strings.NewReader(exported))
	require.NoError(t, err)
	require.Len(t, imported, 2)

	first := imported[0]
	assert.Equal(t, "IA-001", first.HumanID)
	assert.Equal(t, atom.StatusDraft, first.Status, "imports always enter as drafts")
	assert.Equal(t, atom.CategorySecurity, first.Category)
	assert.Equal(t, []string{"auth", "mfa"}, first.Tags)
	require.Len(t, first.ObservableOutcomes, 1)
	assert.Equal(t, "ui", first.ObservableOutcomes[0].Signal)
	require.Len(t, first.FalsifiabilityCriteria, 1)
	assert.True(t, first.FalsifiabilityCriteria[0].Measurable)

	// The committed source atom imports as a plain draft.
	second := imported[1]
	assert.Equal(t, atom.StatusDraft, second.Status)
	assert.Nil(t, second.CommittedAt)
}

func TestImportRejectsMalformedYAML(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.ImportYAML(context.Background(), strings.NewReader("atoms: [not closed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode catalog")
}

func TestImportStopsAtInvalidEntry(t *testing.T) {
	r, _ := newTestRegistry(t)

	doc := `atoms:
  - description: "Valid imported behavior"
    category: functional
  - description: ""
    category: functional
`
	imported, err := r.ImportYAML(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "failed to import atom 2 of 2")
	require.Len(t, imported, 1, "entries before the failure stay imported")
	assert.Equal(t, "Valid imported behavior", imported[0].Description)
}
