// Package diag provides the structured error log for the simulation and an
// optional SQLite-backed journal for offline inspection. The log records
// every integrity violation and failed calculation, keyed by village, and is
// queryable per village and as aggregate statistics.
package diag

import (
	"sync"
	"time"
)

// Category classifies a logged error.
type Category string

const (
	// CategoryDataIntegrity marks an invariant violation on a village field.
	CategoryDataIntegrity Category = "data_integrity"
	// CategoryCalculation marks an arithmetic operation that produced a
	// non-finite or exceptional result.
	CategoryCalculation Category = "calculation"
)

// Entry is one logged error.
type Entry struct {
	Village  string    `json:"village" db:"village"`
	Category Category  `json:"category" db:"category"`
	Field    string    `json:"field" db:"field"`
	Message  string    `json:"message" db:"message"`
	At       time.Time `json:"at" db:"at"`
}

// Stats summarizes the log.
type Stats struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	ByVillage  map[string]int   `json:"by_village"`
}

// Log is an append-only, bounded error log. Safe for concurrent use: the
// simulation appends while the HTTP layer queries.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewLog creates a log that keeps at most limit entries (oldest dropped).
// limit <= 0 means unbounded.
func NewLog(limit int) *Log {
	return &Log{limit: limit}
}

// Append records an error.
func (l *Log) Append(village string, cat Category, field, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Village:  village,
		Category: cat,
		Field:    field,
		Message:  message,
		At:       time.Now(),
	})
	if l.limit > 0 && len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
}

// ForVillage returns all entries for one village, oldest first.
func (l *Log) ForVillage(village string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Village == village {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every entry, oldest first.
func (l *Log) All() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Stats returns aggregate counts.
func (l *Log) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Stats{
		Total:      len(l.entries),
		ByCategory: make(map[Category]int),
		ByVillage:  make(map[string]int),
	}
	for _, e := range l.entries {
		s.ByCategory[e.Category]++
		s.ByVillage[e.Village]++
	}
	return s
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Drain returns all entries and clears the log in one step; used when
// flushing to a journal.
func (l *Log) Drain() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.entries
	l.entries = nil
	return out
}
