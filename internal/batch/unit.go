package batch

import "context"

// Unit is one item of batch work. ID is the identity (a URL or a file
// path); Title and Category are informational metadata only.
type Unit struct {
	ID       string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// Outcome is the result of processing a single unit.
type Outcome struct {
	// Err is nil on success. A non-nil Err is recorded in the ledger's
	// failed list and the run continues with the next unit.
	Err error

	// Discovered holds units found while processing this one (the crawl
	// variant reports sidebar links here). The runner appends unseen
	// discoveries to its live queue.
	Discovered []Unit
}

// Processor handles one unit of work. Implementations must not panic:
// any failure is reported through Outcome.Err. The runner still recovers
// panics at this boundary and converts them into failures.
type Processor interface {
	Process(ctx context.Context, unit Unit) Outcome
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(ctx context.Context, unit Unit) Outcome

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, unit Unit) Outcome {
	return f(ctx, unit)
}
