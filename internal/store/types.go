package store

import "time"

// ObservedPackage is the last state the provider reported for a package.
type ObservedPackage struct {
	Name       string
	Version    string
	ObservedAt time.Time
}

// Run is one reconcile pass over a manifest.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Changes    int
}

// Change is one action a reconcile pass took for a package.
type Change struct {
	RunID       int64
	Package     string
	Action      string
	FromVersion string
	ToVersion   string
}
