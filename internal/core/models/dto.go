package models

import (
	"time"

	"github.com/quegate/quegate/internal/core/transport"
)

type QueueDTO struct {
	// Identity
	Name string `json:"name"`
	Path string `json:"path"`

	// State
	Status       string `json:"status"` // ACTIVE, INACTIVE, ERROR
	MessageCount int64  `json:"message_count"`
	Stale        bool   `json:"stale,omitempty"` // served from cache, backend unreachable

	// Properties
	Label         string `json:"label,omitempty"`
	MaxSizeKB     int64  `json:"max_size_kb,omitempty"`
	Transactional bool   `json:"transactional"`
	Journal       bool   `json:"journal"`

	// Metadata
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func MapQueueDTO(q transport.QueueInfo) QueueDTO {
	return QueueDTO{
		Name:          q.Name,
		Path:          q.Path,
		Status:        string(q.Status),
		MessageCount:  q.MessageCount,
		Label:         q.Label,
		MaxSizeKB:     q.MaxSizeKB,
		Transactional: q.Transactional,
		Journal:       q.Journal,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func MapListQueuesDTO(queues []transport.QueueInfo) []QueueDTO {
	listQueuesDTO := make([]QueueDTO, len(queues))
	for i, q := range queues {
		listQueuesDTO[i] = MapQueueDTO(q)
	}
	return listQueuesDTO
}

type MessageDTO struct {
	ID            string    `json:"id"`
	Queue         string    `json:"queue"`
	Body          string    `json:"body"`
	Label         string    `json:"label"`
	Priority      int       `json:"priority"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Status        string    `json:"status"`
	SentAt        time.Time `json:"sent_at,omitempty"`
	ReceivedAt    time.Time `json:"received_at,omitempty"`
}

// MapMessageDTO converts a transport message, returning nil for nil so the
// empty-receive case flows through unchanged.
func MapMessageDTO(m *transport.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:            m.ID,
		Queue:         m.Queue,
		Body:          string(m.Body),
		Label:         m.Label,
		Priority:      m.Priority,
		CorrelationID: m.CorrelationID,
		Status:        string(m.Status),
		SentAt:        m.SentAt,
		ReceivedAt:    m.ReceivedAt,
	}
}

type QueueStatsDTO struct {
	Queue         string    `json:"queue"`
	MessageCount  int64     `json:"message_count"`
	BytesInQueue  int64     `json:"bytes_in_queue"`
	LastSendAt    time.Time `json:"last_send_at,omitempty"`
	LastReceiveAt time.Time `json:"last_receive_at,omitempty"`
}

func MapQueueStatsDTO(s transport.QueueStats) QueueStatsDTO {
	return QueueStatsDTO{
		Queue:         s.Queue,
		MessageCount:  s.MessageCount,
		BytesInQueue:  s.BytesInQueue,
		LastSendAt:    s.LastSendAt,
		LastReceiveAt: s.LastReceiveAt,
	}
}

type AlertDTO struct {
	ID        string     `json:"id"`
	Severity  string     `json:"severity"` // INFO, WARNING, ERROR, CRITICAL
	Purpose   string     `json:"purpose"`  // CONNECTION, OPERATION, CAPACITY, FORMAT
	Code      string     `json:"code"`
	Queue     string     `json:"queue,omitempty"`
	Message   string     `json:"message"`
	Count     int        `json:"count"` // duplicates folded within the dedup window
	CreatedAt time.Time  `json:"created_at"`
	AckedAt   *time.Time `json:"acked_at,omitempty"`
}

type MailingListDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Purpose    string   `json:"purpose"`
	Enabled    bool     `json:"enabled"`
	Recipients []string `json:"recipients"`
}

// JournalEntryDTO is one journaled message envelope. Bodies are never
// journaled, only their size.
type JournalEntryDTO struct {
	ID            string    `json:"id"`
	Queue         string    `json:"queue"`
	Direction     string    `json:"direction"` // SENT, RECEIVED
	MessageID     string    `json:"message_id"`
	Label         string    `json:"label,omitempty"`
	Priority      int       `json:"priority"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	BodySize      int64     `json:"body_size"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
