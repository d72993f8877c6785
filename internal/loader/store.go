package loader

import (
	"sync/atomic"

	"foncier/server/internal/models"
)

// Store holds the canonical table for concurrent readers. The table is
// immutable once published; Publish swaps the reference atomically so a
// refresh can never expose a partially-updated table.
type Store struct {
	table  atomic.Pointer[models.Table]
	report atomic.Pointer[Report]
}

// NewStore returns a store with an empty table published, so readers
// before the first load see "no data" rather than nil.
func NewStore() *Store {
	s := &Store{}
	s.Publish(&models.Table{}, Report{})
	return s
}

// Publish replaces the current table and its cleaning report.
func (s *Store) Publish(table *models.Table, report Report) {
	s.report.Store(&report)
	s.table.Store(table)
}

// Table returns the currently published canonical table.
func (s *Store) Table() *models.Table {
	return s.table.Load()
}

// Report returns the cleaning report of the published table.
func (s *Store) Report() Report {
	return *s.report.Load()
}
