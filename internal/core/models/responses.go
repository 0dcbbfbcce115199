package models

// ErrorResponse is the error envelope every handler returns on failure. Code
// and Kind carry the qerrors classification so clients can react without
// parsing the message text.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Queue string `json:"queue,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type QueueListResponse struct {
	Queues []QueueDTO `json:"queues"`
	Stale  bool       `json:"stale,omitempty"`
}

type MessageResponse struct {
	Message *MessageDTO `json:"message"`
}

type CountResponse struct {
	Queue string `json:"queue"`
	Count int64  `json:"count"`
}

type ExistsResponse struct {
	Queue  string `json:"queue"`
	Exists bool   `json:"exists"`
}

type AlertListResponse struct {
	Alerts []AlertDTO `json:"alerts"`
}

type MailingListListResponse struct {
	MailingLists []MailingListDTO `json:"mailing_lists"`
}

type JournalListResponse struct {
	Entries []JournalEntryDTO `json:"entries"`
}
