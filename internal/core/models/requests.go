package models

// CreateQueueRequest is the body of POST /api/queues. Name takes any of the
// accepted queue grammars (pathname, DIRECT=, FORMATNAME:, HTTP).
type CreateQueueRequest struct {
	Name          string `json:"name" validate:"required"`
	Label         string `json:"label"`
	MaxSizeKB     int64  `json:"max_size_kb"`
	Transactional bool   `json:"transactional"`
	Journal       bool   `json:"journal"`
}

// UpdateQueueRequest is the body of PUT /api/queues/:name. Nil fields stay
// untouched.
type UpdateQueueRequest struct {
	Label     *string `json:"label,omitempty"`
	MaxSizeKB *int64  `json:"max_size_kb,omitempty"`
	Journal   *bool   `json:"journal,omitempty"`
}

// SendMessageRequest is the body of POST /api/queues/:name/messages.
// Priority nil means the platform default (3); out-of-range values are
// rejected, never clamped.
type SendMessageRequest struct {
	Body          string `json:"body" validate:"required"`
	Label         string `json:"label"`
	Priority      *int   `json:"priority,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// ReceiveMessageRequest is the body of POST /api/queues/:name/receive.
// TimeoutMS nil falls back to the configured receive timeout; zero returns
// immediately when the queue is empty.
type ReceiveMessageRequest struct {
	TimeoutMS *int64 `json:"timeout_ms,omitempty"`
}

// CreateMailingListRequest is the body of POST /api/mailing-lists.
type CreateMailingListRequest struct {
	Name       string   `json:"name" validate:"required"`
	Purpose    string   `json:"purpose"`
	Recipients []string `json:"recipients"`
}
