package storage

import (
	"context"
	"database/sql"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// Changeset query constants
const (
	ChangesetInsertQuery = `
		INSERT INTO changesets (id, name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	ChangesetGetQuery = `
		SELECT id, name, status, created_at, updated_at
		FROM changesets WHERE id = ?`

	ChangesetListQuery = `
		SELECT id, name, status, created_at, updated_at
		FROM changesets ORDER BY created_at, id`

	ChangesetUpdateStatusQuery = `
		UPDATE changesets SET status = ?, updated_at = ? WHERE id = ?`
)

// CreateChangeset inserts a new changeset.
func (s *SQLStore) CreateChangeset(ctx context.Context, cs *atom.Changeset) error {
	_, err := s.db.ExecContext(ctx, ChangesetInsertQuery,
		cs.ID, cs.Name, cs.Status, cs.CreatedAt, cs.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "failed to insert changeset %s", cs.ID)
	}
	return nil
}

// GetChangeset retrieves a changeset by ID.
func (s *SQLStore) GetChangeset(ctx context.Context, id string) (*atom.Changeset, error) {
	var cs atom.Changeset
	err := s.db.QueryRowContext(ctx, ChangesetGetQuery, id).Scan(
		&cs.ID, &cs.Name, &cs.Status, &cs.CreatedAt, &cs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundf("changeset %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load changeset %s", id)
	}
	return &cs, nil
}

// ListChangesets returns every changeset in creation order.
func (s *SQLStore) ListChangesets(ctx context.Context) ([]*atom.Changeset, error) {
	rows, err := s.db.QueryContext(ctx, ChangesetListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list changesets")
	}
	defer rows.Close()

	var sets []*atom.Changeset
	for rows.Next() {
		var cs atom.Changeset
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Status, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan changeset row")
		}
		sets = append(sets, &cs)
	}
	return sets, rows.Err()
}

// ResolveChangeset persists a changeset resolution atomically: every member
// atom's new state and the changeset's new status land in one transaction,
// or none of it does. Member updates are row-version guarded; a concurrent
// writer aborts the whole resolution.
func (s *SQLStore) ResolveChangeset(ctx context.Context, cs *atom.Changeset, members []*atom.Atom) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, a := range members {
		fields, err := MarshalAtomFields(a)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, AtomUpdateQuery,
			a.Description,
			a.Category,
			a.Status,
			a.QualityScore,
			nullableString(a.IntentIdentity),
			a.IntentVersion,
			a.ParentIntent,
			a.SupersededBy,
			fields.TagsJSON,
			fields.OutcomesJSON,
			fields.CriteriaJSON,
			fields.RefinementsJSON,
			a.ChangesetID,
			a.CommittedAt,
			a.UpdatedAt,
			a.ID,
			a.RowVersion,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to update atom %s during changeset resolution", a.ID)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read update result")
		}
		if affected == 0 {
			return errors.NewStateConflictf("atom %s was modified concurrently during changeset resolution", a.ID)
		}
	}

	if _, err := tx.ExecContext(ctx, ChangesetUpdateStatusQuery, cs.Status, cs.UpdatedAt, cs.ID); err != nil {
		return errors.Wrapf(err, "failed to update changeset %s", cs.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit changeset resolution")
	}

	for _, a := range members {
		a.RowVersion++
	}
	return nil
}
