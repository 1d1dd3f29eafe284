package models

// Requests for the chat HTTP endpoints. Defined in domain for consistency and reuse.

type ChatRequest struct {
	SessionID string `json:"session_id" default:"default" validate:"max=128"`
	Question  string `json:"question" validate:"required,max=2000"`
}

type ChatResponse struct {
	Answer   string   `json:"answer"`
	Data     []Record `json:"data"`
	Charts   []*Chart `json:"charts"`
	Grounded bool     `json:"grounded"`
}

type TickerLookupRequest struct {
	Q string `query:"q" json:"q" validate:"required,max=500"`
}
