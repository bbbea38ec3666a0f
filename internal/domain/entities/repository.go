package entities

import "time"

// Repository is a point-in-time snapshot of a hosted repository.
// Name is the mirror key between organizations; ID is the host's stable identity.
type Repository struct {
	ID           int64
	Name         string
	Organization string
	PushedAt     time.Time
	HasContent   bool
}

// FullName returns the "<organization>/<name>" form used in log lines.
func (r Repository) FullName() string {
	return r.Organization + "/" + r.Name
}

// NewerThan reports whether r received a push strictly after other.
func (r Repository) NewerThan(other Repository) bool {
	return r.PushedAt.After(other.PushedAt)
}
