package atom

import (
	"time"
)

// ChangesetStatus is the lifecycle state of a changeset.
type ChangesetStatus string

const (
	// ChangesetOpen accepts new proposed atoms.
	ChangesetOpen ChangesetStatus = "open"
	// ChangesetApproved had all its proposed atoms committed together.
	ChangesetApproved ChangesetStatus = "approved"
	// ChangesetDiscarded had its proposed atoms abandoned.
	ChangesetDiscarded ChangesetStatus = "discarded"
)

// Valid returns true if the status is a member of the closed set.
func (s ChangesetStatus) Valid() bool {
	switch s {
	case ChangesetOpen, ChangesetApproved, ChangesetDiscarded:
		return true
	default:
		return false
	}
}

func (s ChangesetStatus) String() string {
	return string(s)
}

// Changeset groups proposed atoms for batch review. Approval commits every
// member in one transaction; discarding abandons them.
type Changeset struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Status    ChangesetStatus `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Open reports whether the changeset still accepts proposed atoms.
func (c *Changeset) Open() bool {
	return c.Status == ChangesetOpen
}
