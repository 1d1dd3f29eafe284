package models

// ChartField is the record key under which chart-producing tools attach their
// figure. The dispatch loop pops it before the record joins the aggregated
// data set.
const ChartField = "fig"

// ToolInvocation is one tool call as returned by the oracle's selection phase.
// Arguments come from the model and are untrusted; each tool validates what it
// consumes.
type ToolInvocation struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Record is one flat tool output row. Field sets are fixed per tool; missing
// upstream values are defaulted, keys are never omitted.
type Record map[string]interface{}

// DispatchResult aggregates one turn's tool outputs: structured records with
// charts split out, both in invocation order.
type DispatchResult struct {
	Records []Record `json:"records"`
	Charts  []*Chart `json:"charts"`
}

// Empty reports whether the turn produced no structured data. The caller uses
// this to fall back to a generic conversational answer.
func (r *DispatchResult) Empty() bool {
	return len(r.Records) == 0
}
