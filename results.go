package cadence

import (
	"time"

	"github.com/xraph/cadence/id"
)

// Result records one generation attempt for one rule. Results are transient:
// they are returned to the caller and handed to plugins, never persisted.
type Result struct {
	RuleID     id.RuleID     `json:"rule_id"`
	RuleName   string        `json:"rule_name,omitempty"`
	Success    bool          `json:"success"`
	DocumentID id.DocumentID `json:"document_id,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// BatchResult aggregates the results of one processing run.
type BatchResult struct {
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Results     []Result  `json:"results"`
	CompletedAt time.Time `json:"completed_at"`
}

func (b *BatchResult) add(r Result) {
	b.Processed++
	if r.Success {
		b.Succeeded++
	} else {
		b.Failed++
	}
	b.Results = append(b.Results, r)
}
