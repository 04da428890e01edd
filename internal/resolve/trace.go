package resolve

import "github.com/pricestream/relay/internal/source"

// Step names for the lookup stages that never leave the process.
const (
	StepTable = "table"
	StepCache = "cache"
)

// Trace records what every resolution step attempted and what came back,
// so an empty result can be diagnosed step by step.
type Trace struct {
	Symbols  []string          `json:"symbols"`
	Table    map[string]bool   `json:"table"`
	Cache    map[string]bool   `json:"cache"`
	Attempts []source.Attempt  `json:"attempts"`
	Resolved map[string]string `json:"resolved"`
	Missing  []string          `json:"missing,omitempty"`
}

func newTrace(symbols []string) *Trace {
	return &Trace{
		Symbols:  symbols,
		Table:    make(map[string]bool, len(symbols)),
		Cache:    make(map[string]bool),
		Resolved: make(map[string]string, len(symbols)),
	}
}
