package mesh

import (
	"sync"
	"time"
)

// StateTracker holds the most recent assembly for HTTP endpoints.
// The assembler is the single writer; handlers only read.
type StateTracker struct {
	mu        sync.RWMutex
	globalMap *GlobalMap
	report    *Report
	updatedAt time.Time
}

// NewStateTracker creates an empty state tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Update replaces the published assembly
func (st *StateTracker) Update(gm *GlobalMap, r *Report) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.globalMap = gm
	st.report = r
	st.updatedAt = time.Now()
}

// GlobalMap returns the current assembly, or nil if none exists.
// The returned map must be treated as read-only.
func (st *StateTracker) GlobalMap() *GlobalMap {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.globalMap
}

// Report returns a copy of the current report, or nil if none exists.
func (st *StateTracker) Report() *Report {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.report == nil {
		return nil
	}
	r := *st.report
	r.Scanners = append([]ScannerPosition(nil), st.report.Scanners...)
	r.Beacons = append([]Point(nil), st.report.Beacons...)
	return &r
}

// HasAssembly returns true once an assembly has been published
func (st *StateTracker) HasAssembly() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.globalMap != nil
}

// UpdatedAt returns when the assembly was last replaced
func (st *StateTracker) UpdatedAt() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.updatedAt
}
