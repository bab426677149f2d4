// Package storage provides SQLite-backed persistence for atoms, changesets,
// and molecules. It handles JSON column serialization, human ID allocation,
// and optimistic concurrency on updates.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// AtomFields holds marshaled JSON columns for database operations.
type AtomFields struct {
	TagsJSON        string
	OutcomesJSON    string
	CriteriaJSON    string
	RefinementsJSON string
}

// MarshalAtomFields marshals all atom array fields to JSON. Nil slices are
// stored as empty arrays so exports stay uniform.
func MarshalAtomFields(a *atom.Atom) (*AtomFields, error) {
	if a == nil {
		return nil, errors.New("atom is nil")
	}

	tagsJSON, err := marshalList(a.Tags)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tags")
	}

	outcomesJSON, err := marshalList(a.ObservableOutcomes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal observable outcomes")
	}

	criteriaJSON, err := marshalList(a.FalsifiabilityCriteria)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal falsifiability criteria")
	}

	refinementsJSON, err := marshalList(a.RefinementHistory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal refinement history")
	}

	return &AtomFields{
		TagsJSON:        tagsJSON,
		OutcomesJSON:    outcomesJSON,
		CriteriaJSON:    criteriaJSON,
		RefinementsJSON: refinementsJSON,
	}, nil
}

func marshalList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// atomColumns is the canonical column order shared by every SELECT and the
// scanAtom helper.
const atomColumns = `id, human_id, description, category, status, quality_score,
	intent_identity, intent_version, parent_intent, superseded_by,
	tags, observable_outcomes, falsifiability_criteria, refinement_history,
	changeset_id, committed_at, created_at, updated_at, row_version`

// Query constants
const (
	AtomInsertQuery = `
		INSERT INTO atoms (` + atomColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	AtomGetByIDQuery = `
		SELECT ` + atomColumns + ` FROM atoms WHERE id = ?`

	AtomGetByHumanIDQuery = `
		SELECT ` + atomColumns + ` FROM atoms WHERE human_id = ?`

	AtomUpdateQuery = `
		UPDATE atoms SET
			description = ?, category = ?, status = ?, quality_score = ?,
			intent_identity = ?, intent_version = ?, parent_intent = ?,
			superseded_by = ?, tags = ?, observable_outcomes = ?,
			falsifiability_criteria = ?, refinement_history = ?,
			changeset_id = ?, committed_at = ?, updated_at = ?,
			row_version = row_version + 1
		WHERE id = ? AND row_version = ?`

	AtomDeleteQuery = `
		DELETE FROM atoms WHERE id = ?`

	AtomExistsQuery = `
		SELECT EXISTS(SELECT 1 FROM atoms WHERE id = ?)`

	AtomCountQuery = `
		SELECT COUNT(*) FROM atoms`

	NextHumanIDQuery = `
		SELECT next_value FROM human_id_counter WHERE id = 1`

	IncrementHumanIDQuery = `
		UPDATE human_id_counter SET next_value = next_value + 1 WHERE id = 1`
)

// maxHumanIDRetries bounds the retry loop on human_id UNIQUE conflicts.
// SQLite serializes writers, so a conflict here means another process won
// the allocation between our read and our insert.
const maxHumanIDRetries = 3

// SQLStore persists the atom catalog in SQLite.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a new SQL-backed atom store.
func NewSQLStore(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

// CreateAtom inserts a new atom, allocating its human ID from the forward-only
// counter inside the same transaction. The counter never moves backwards, so
// numbers freed by deleted drafts are never handed out again.
func (s *SQLStore) CreateAtom(ctx context.Context, a *atom.Atom) error {
	fields, err := MarshalAtomFields(a)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxHumanIDRetries; attempt++ {
		humanID, err := s.insertWithNextHumanID(ctx, a, fields)
		if err == nil {
			a.HumanID = humanID
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
		s.logger.Debugw("Human ID allocation conflict, retrying",
			"attempt", attempt,
			"atom_id", a.ID)
	}
	return errors.Wrapf(lastErr, "human id allocation failed after %d attempts", maxHumanIDRetries)
}

func (s *SQLStore) insertWithNextHumanID(ctx context.Context, a *atom.Atom, fields *AtomFields) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, NextHumanIDQuery).Scan(&next); err != nil {
		return "", errors.Wrap(err, "failed to read human id counter")
	}
	if _, err := tx.ExecContext(ctx, IncrementHumanIDQuery); err != nil {
		return "", errors.Wrap(err, "failed to advance human id counter")
	}

	humanID := atom.FormatHumanID(next)
	_, err = tx.ExecContext(ctx, AtomInsertQuery,
		a.ID,
		humanID,
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
		a.CreatedAt,
		a.UpdatedAt,
		a.RowVersion,
	)
	if err != nil {
		return "", errors.Wrapf(err, "failed to insert atom %s", humanID)
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "failed to commit atom insert")
	}
	return humanID, nil
}

// GetAtom retrieves an atom by its opaque ID.
func (s *SQLStore) GetAtom(ctx context.Context, id string) (*atom.Atom, error) {
	a, err := scanAtom(s.db.QueryRowContext(ctx, AtomGetByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundf("atom %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load atom %s", id)
	}
	return a, nil
}

// GetAtomByHumanID retrieves an atom by its IA-NNN identifier.
func (s *SQLStore) GetAtomByHumanID(ctx context.Context, humanID string) (*atom.Atom, error) {
	a, err := scanAtom(s.db.QueryRowContext(ctx, AtomGetByHumanIDQuery, humanID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundf("atom %s not found", humanID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load atom %s", humanID)
	}
	return a, nil
}

// AtomExists checks whether an atom with the given ID exists.
func (s *SQLStore) AtomExists(ctx context.Context, id string) bool {
	var exists bool
	err := s.db.QueryRowContext(ctx, AtomExistsQuery, id).Scan(&exists)
	return err == nil && exists
}

// CountAtoms returns the catalog size, every status included.
func (s *SQLStore) CountAtoms(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, AtomCountQuery).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count atoms")
	}
	return count, nil
}

// UpdateAtom persists the atom's current field values guarded by its row
// version. A concurrent writer bumps the version first and this call then
// returns StateConflict; the caller re-reads and retries or surfaces it.
func (s *SQLStore) UpdateAtom(ctx context.Context, a *atom.Atom) error {
	fields, err := MarshalAtomFields(a)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, AtomUpdateQuery,
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
		return errors.Wrapf(err, "failed to update atom %s", a.ID)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		if !s.AtomExists(ctx, a.ID) {
			return errors.NewNotFoundf("atom %s not found", a.ID)
		}
		return errors.NewStateConflictf("atom %s was modified concurrently", a.ID)
	}

	a.RowVersion++
	return nil
}

// DeleteAtom removes an atom row outright. Molecule membership rows hold a
// foreign key without cascade, so deleting a member atom fails at the
// database even if the caller's guard was bypassed.
func (s *SQLStore) DeleteAtom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, AtomDeleteQuery, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NewStateConflictf("atom %s is referenced by a molecule", id)
		}
		return errors.Wrapf(err, "failed to delete atom %s", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if affected == 0 {
		return errors.NewNotFoundf("atom %s not found", id)
	}
	return nil
}

// nullableString maps "" to NULL for columns that distinguish absent from
// empty.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAtom reads one row in atomColumns order.
func scanAtom(row rowScanner) (*atom.Atom, error) {
	var (
		a              atom.Atom
		qualityScore   sql.NullInt64
		intentIdentity sql.NullString
		parentIntent   sql.NullString
		supersededBy   sql.NullString
		changesetID    sql.NullString
		committedAt    sql.NullTime
		tagsJSON       string
		outcomesJSON   string
		criteriaJSON   string
		refineJSON     string
	)

	err := row.Scan(
		&a.ID,
		&a.HumanID,
		&a.Description,
		&a.Category,
		&a.Status,
		&qualityScore,
		&intentIdentity,
		&a.IntentVersion,
		&parentIntent,
		&supersededBy,
		&tagsJSON,
		&outcomesJSON,
		&criteriaJSON,
		&refineJSON,
		&changesetID,
		&committedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.RowVersion,
	)
	if err != nil {
		return nil, err
	}

	if qualityScore.Valid {
		score := int(qualityScore.Int64)
		a.QualityScore = &score
	}
	a.IntentIdentity = intentIdentity.String
	if parentIntent.Valid {
		a.ParentIntent = &parentIntent.String
	}
	if supersededBy.Valid {
		a.SupersededBy = &supersededBy.String
	}
	if changesetID.Valid {
		a.ChangesetID = &changesetID.String
	}
	if committedAt.Valid {
		t := committedAt.Time
		a.CommittedAt = &t
	}

	if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal tags for atom %s", a.ID)
	}
	if err := json.Unmarshal([]byte(outcomesJSON), &a.ObservableOutcomes); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal observable outcomes for atom %s", a.ID)
	}
	if err := json.Unmarshal([]byte(criteriaJSON), &a.FalsifiabilityCriteria); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal falsifiability criteria for atom %s", a.ID)
	}
	if err := json.Unmarshal([]byte(refineJSON), &a.RefinementHistory); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal refinement history for atom %s", a.ID)
	}

	return &a, nil
}
