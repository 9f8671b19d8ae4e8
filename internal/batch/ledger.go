package batch

import (
	"sort"
	"time"
)

// maxErrorLen caps ledger error descriptions so the failed list stays
// readable (short message, not a full stack trace).
const maxErrorLen = 100

// Failure records one failed unit: identifier, metadata and a truncated
// error description. Entries are append-only within a run and may repeat
// across runs.
type Failure struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// Ledger is the persisted progress of a batch run: the set of completed
// unit identifiers, the ordered failure records, and the last checkpoint
// time. Completed only grows within a run.
type Ledger struct {
	Timestamp string    `json:"timestamp"`
	Total     int       `json:"total"`
	Completed []string  `json:"completed"`
	Failed    []Failure `json:"failed"`

	completed map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Completed: []string{},
		Failed:    []Failure{},
		completed: make(map[string]struct{}),
	}
}

// index rebuilds the completed-set index after deserialization.
func (l *Ledger) index() {
	l.completed = make(map[string]struct{}, len(l.Completed))
	for _, id := range l.Completed {
		l.completed[id] = struct{}{}
	}
	if l.Failed == nil {
		l.Failed = []Failure{}
	}
}

// IsCompleted reports whether the unit identifier succeeded in this or a
// previous run.
func (l *Ledger) IsCompleted(id string) bool {
	_, ok := l.completed[id]
	return ok
}

// MarkCompleted adds a unit identifier to the completed set.
func (l *Ledger) MarkCompleted(id string) {
	if l.IsCompleted(id) {
		return
	}
	l.completed[id] = struct{}{}
	l.Completed = append(l.Completed, id)
}

// MarkFailed appends a failure record with the error text truncated to
// maxErrorLen.
func (l *Ledger) MarkFailed(unit Unit, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	l.Failed = append(l.Failed, Failure{
		URL:   unit.ID,
		Title: unit.Title,
		Error: truncate(msg, maxErrorLen),
	})
}

// CompletedCount returns the number of completed identifiers.
func (l *Ledger) CompletedCount() int {
	return len(l.completed)
}

// stamp sorts the completed list (deterministic serialization of an
// unordered set) and refreshes the checkpoint time.
func (l *Ledger) stamp(now time.Time) {
	sort.Strings(l.Completed)
	l.Timestamp = now.Format(time.RFC3339)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
