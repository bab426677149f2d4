package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/storage/testutil"
	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/internal/util"
)

func newOpenChangeset(name string) *atom.Changeset {
	now := time.Now().UTC()
	return &atom.Changeset{
		ID:        "cs-" + name,
		Name:      name,
		Status:    atom.ChangesetOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestChangesetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cs := newOpenChangeset("sprint-12")
	require.NoError(t, store.CreateChangeset(ctx, cs))

	got, err := store.GetChangeset(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "sprint-12", got.Name)
	assert.Equal(t, atom.ChangesetOpen, got.Status)
	assert.True(t, got.Open())
}

func TestGetChangesetNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetChangeset(context.Background(), "cs-missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListChangesets(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateChangeset(ctx, newOpenChangeset("alpha")))
	require.NoError(t, store.CreateChangeset(ctx, newOpenChangeset("beta")))

	sets, err := store.ListChangesets(ctx)
	require.NoError(t, err)
	assert.Len(t, sets, 2)
}

func TestResolveChangesetAppliesAllMembers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cs := newOpenChangeset("release")
	require.NoError(t, store.CreateChangeset(ctx, cs))

	var members []*atom.Atom
	for _, desc := range []string{"first proposed", "second proposed"} {
		a := testutil.NewDraftAtom(desc)
		a.Status = atom.StatusProposed
		a.ChangesetID = &cs.ID
		require.NoError(t, store.CreateAtom(ctx, a))
		members = append(members, a)
	}

	now := time.Now().UTC()
	for _, a := range members {
		a.Status = atom.StatusCommitted
		a.QualityScore = util.Ptr(90)
		a.CommittedAt = &now
		a.ChangesetID = nil
		a.UpdatedAt = now
	}
	cs.Status = atom.ChangesetApproved
	cs.UpdatedAt = now

	require.NoError(t, store.ResolveChangeset(ctx, cs, members))
	assert.Equal(t, 2, members[0].RowVersion)

	for _, a := range members {
		got, err := store.GetAtom(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, atom.StatusCommitted, got.Status)
		assert.Nil(t, got.ChangesetID)
		require.NotNil(t, got.CommittedAt)
	}

	gotCS, err := store.GetChangeset(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, atom.ChangesetApproved, gotCS.Status)
}

func TestResolveChangesetRollsBackOnConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cs := newOpenChangeset("contended")
	require.NoError(t, store.CreateChangeset(ctx, cs))

	a := testutil.NewDraftAtom("proposed member")
	a.Status = atom.StatusProposed
	a.ChangesetID = &cs.ID
	require.NoError(t, store.CreateAtom(ctx, a))

	// Another writer bumps the row version behind our back.
	concurrent, err := store.GetAtom(ctx, a.ID)
	require.NoError(t, err)
	concurrent.Description = "changed concurrently"
	require.NoError(t, store.UpdateAtom(ctx, concurrent))

	a.Status = atom.StatusCommitted
	a.QualityScore = util.Ptr(95)
	cs.Status = atom.ChangesetApproved

	err = store.ResolveChangeset(ctx, cs, []*atom.Atom{a})
	require.Error(t, err)
	assert.True(t, errors.IsStateConflict(err))

	// Nothing moved: the atom keeps the concurrent write, the changeset
	// stays open.
	got, err := store.GetAtom(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, atom.StatusProposed, got.Status)
	assert.Equal(t, "changed concurrently", got.Description)

	gotCS, err := store.GetChangeset(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, atom.ChangesetOpen, gotCS.Status)
}
