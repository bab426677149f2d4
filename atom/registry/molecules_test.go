package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/errors"
)

func TestCreateMoleculeValidatesName(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.CreateMolecule(context.Background(), "", "grouping without a name")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestMoleculeMembershipBlocksRemove(t *testing.T) {
	r, _ := newTestRegistry(t)
	a := createDraft(t, r, "Grouped behavior")
	m, err := r.CreateMolecule(context.Background(), "checkout-flow", "end to end checkout")
	require.NoError(t, err)

	require.NoError(t, r.AddAtomToMolecule(context.Background(), m.ID, a.HumanID))

	err = r.Remove(context.Background(), a.ID)
	require.Error(t, err)
	assert.True(t, errors.IsStateConflict(err))
	assert.Contains(t, err.Error(), "molecule")

	require.NoError(t, r.RemoveAtomFromMolecule(context.Background(), m.ID, a.HumanID))
	require.NoError(t, r.Remove(context.Background(), a.ID))
}

func TestMoleculeMembershipKeepsOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	m, err := r.CreateMolecule(context.Background(), "onboarding", "signup through first login")
	require.NoError(t, err)

	descriptions := []string{"Step one", "Step two", "Step three"}
	for _, d := range descriptions {
		a := createDraft(t, r, d)
		require.NoError(t, r.AddAtomToMolecule(context.Background(), m.ID, a.ID))
	}

	members, err := r.ListMoleculeAtoms(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for i, member := range members {
		assert.Equal(t, descriptions[i], member.Description)
	}
}

func TestAddAtomToMoleculeFailures(t *testing.T) {
	r, _ := newTestRegistry(t)
	a := createDraft(t, r, "Lonely atom")

	err := r.AddAtomToMolecule(context.Background(), "no-such-molecule", a.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	m, err := r.CreateMolecule(context.Background(), "real", "")
	require.NoError(t, err)
	err = r.AddAtomToMolecule(context.Background(), m.ID, "IA-999")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
