package storage

import (
	"context"
	"strings"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// ListFilter narrows ListAtoms. Zero values mean no constraint.
type ListFilter struct {
	Statuses    []atom.Status
	Category    atom.Category
	ChangesetID string
	Tag         string
}

const (
	atomListBaseQuery = `
		SELECT ` + atomColumns + ` FROM atoms`

	// Human ids sort numerically, not lexically: IA-100 comes after IA-99.
	atomListOrder = `
		ORDER BY CAST(SUBSTR(human_id, 4) AS INTEGER)`
)

// ListAtoms returns atoms matching the filter in human id order.
func (s *SQLStore) ListAtoms(ctx context.Context, filter ListFilter) ([]*atom.Atom, error) {
	var (
		clauses []string
		args    []any
	)

	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		clauses = append(clauses, "status IN ("+placeholders+")")
		for _, st := range filter.Statuses {
			args = append(args, st)
		}
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ChangesetID != "" {
		clauses = append(clauses, "changeset_id = ?")
		args = append(args, filter.ChangesetID)
	}
	if filter.Tag != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM json_each(atoms.tags)
			WHERE value = ?
		)`)
		args = append(args, filter.Tag)
	}

	query := atomListBaseQuery
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += atomListOrder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list atoms")
	}
	defer rows.Close()

	var atoms []*atom.Atom
	for rows.Next() {
		a, err := scanAtom(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan atom row")
		}
		atoms = append(atoms, a)
	}
	return atoms, rows.Err()
}
