package domain

import "time"

// ChatMessage is one turn in a conversation thread.
type ChatMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the caller-facing input to query processing.
type ChatRequest struct {
	Message  string
	ThreadID string
}

// SourceCounts reports how many records each source contributed to the
// final context.
type SourceCounts struct {
	Primary       int `json:"primary"`
	Supplementary int `json:"supplementary"`
}

// ChatResult is the caller-facing output of query processing. Error carries
// an indicator string when the response text is a degraded fallback; it is
// never a raised error.
type ChatResult struct {
	Response     string       `json:"response"`
	ThreadID     string       `json:"thread_id"`
	Intent       QueryIntent  `json:"intent"`
	Confidence   float64      `json:"confidence"`
	SourceCounts SourceCounts `json:"source_counts"`
	Error        string       `json:"error,omitempty"`
}
