package gateway

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/store"
)

// Alerts lists raised alerts, newest first. Without a store there is
// nothing to list.
func (s *Service) Alerts(ctx context.Context, includeAcked bool, limit int) ([]models.AlertDTO, error) {
	const op = "list_alerts"
	if s.store == nil {
		return []models.AlertDTO{}, nil
	}

	recs, err := s.store.ListAlerts(ctx, includeAcked, limit)
	if err != nil {
		return nil, storeErr(op, "failed to list alerts", err)
	}
	out := make([]models.AlertDTO, len(recs))
	for i, r := range recs {
		out[i] = alertDTO(r)
	}
	return out, nil
}

// AckAlert acknowledges one alert by id. Acknowledging an already
// acknowledged alert is a no-op.
func (s *Service) AckAlert(ctx context.Context, id string) error {
	const op = "ack_alert"
	if s.store == nil {
		return qerrors.Validation(qerrors.CodeStoreDisabled, "alert persistence is disabled").WithOp(op)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return qerrors.Validation(qerrors.CodeInvalidRequest, "alert id must be a positive integer").WithOp(op)
	}

	if err := s.store.AckAlert(ctx, n); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return qerrors.Business(qerrors.CodeAlertNotFound, "alert does not exist").WithOp(op)
		}
		return storeErr(op, "failed to acknowledge alert", err)
	}
	return nil
}

// MailingLists lists the notification mailing lists with their recipients.
func (s *Service) MailingLists(ctx context.Context) ([]models.MailingListDTO, error) {
	const op = "list_mailing_lists"
	if s.store == nil {
		return []models.MailingListDTO{}, nil
	}

	lists, err := s.store.ListMailingLists(ctx)
	if err != nil {
		return nil, storeErr(op, "failed to list mailing lists", err)
	}
	out := make([]models.MailingListDTO, len(lists))
	for i, l := range lists {
		out[i] = mailingListDTO(l)
	}
	return out, nil
}

// CreateMailingList registers a mailing list subscribed to one alert
// purpose. List names are unique.
func (s *Service) CreateMailingList(ctx context.Context, req models.MailingListDTO) (*models.MailingListDTO, error) {
	const op = "create_mailing_list"
	if s.store == nil {
		return nil, qerrors.Validation(qerrors.CodeStoreDisabled, "alert persistence is disabled").WithOp(op)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, qerrors.Validation(qerrors.CodeInvalidRequest, "mailing list name is required").WithOp(op)
	}
	purpose := strings.ToUpper(strings.TrimSpace(req.Purpose))
	if !validPurpose(purpose) {
		return nil, qerrors.Validation(qerrors.CodeInvalidRequest,
			"purpose must be one of CONNECTION, OPERATION, CAPACITY, FORMAT").WithOp(op)
	}

	recipients := make([]string, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}

	created, err := s.store.CreateMailingList(ctx, store.MailingList{
		Name:       name,
		Purpose:    purpose,
		Enabled:    req.Enabled,
		Recipients: recipients,
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			return nil, qerrors.Business(qerrors.CodeListExists, "a mailing list with that name exists").WithOp(op)
		}
		return nil, storeErr(op, "failed to create mailing list", err)
	}

	dto := mailingListDTO(created)
	return &dto, nil
}

// Journal lists journaled message envelopes, newest first. Queue accepts
// any pathname form; direction narrows to SENT or RECEIVED.
func (s *Service) Journal(ctx context.Context, queue, direction string, limit int) ([]models.JournalEntryDTO, error) {
	const op = "list_journal"
	if s.store == nil {
		return []models.JournalEntryDTO{}, nil
	}

	filter := store.JournalFilter{Limit: limit}
	if queue != "" {
		p, err := transport.ParsePathname(queue)
		if err != nil {
			return nil, s.reject(op, queue, err)
		}
		filter.Queue = p.Canonical
	}
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "":
	case store.DirectionSent:
		filter.Direction = store.DirectionSent
	case store.DirectionReceived:
		filter.Direction = store.DirectionReceived
	default:
		return nil, s.reject(op, filter.Queue,
			qerrors.Validation(qerrors.CodeInvalidRequest, "direction must be SENT or RECEIVED"))
	}

	entries, err := s.store.ListJournal(ctx, filter)
	if err != nil {
		return nil, storeErr(op, "failed to list journal", err)
	}
	out := make([]models.JournalEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = journalDTO(e)
	}
	return out, nil
}

// storeErr logs the full cause and surfaces a stable system error without
// it.
func storeErr(op, msg string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return qerrors.System(qerrors.CodeInternal, msg, nil).WithOp(op)
}

func validPurpose(p string) bool {
	switch alert.Purpose(p) {
	case alert.PurposeConnection, alert.PurposeOperation, alert.PurposeCapacity, alert.PurposeFormat:
		return true
	}
	return false
}

func alertDTO(r store.AlertRecord) models.AlertDTO {
	return models.AlertDTO{
		ID:        strconv.FormatInt(r.ID, 10),
		Severity:  r.Severity,
		Purpose:   r.Purpose,
		Code:      r.Code,
		Queue:     r.Queue,
		Message:   r.Message,
		Count:     int(r.Count),
		CreatedAt: r.CreatedAt,
		AckedAt:   r.AckedAt,
	}
}

func journalDTO(e store.JournalEntry) models.JournalEntryDTO {
	return models.JournalEntryDTO{
		ID:            strconv.FormatInt(e.ID, 10),
		Queue:         e.Queue,
		Direction:     e.Direction,
		MessageID:     e.MessageID,
		Label:         e.Label,
		Priority:      e.Priority,
		CorrelationID: e.CorrelationID,
		BodySize:      e.BodySize,
		Status:        e.Status,
		CreatedAt:     e.CreatedAt,
	}
}

func mailingListDTO(l store.MailingList) models.MailingListDTO {
	recipients := l.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	return models.MailingListDTO{
		ID:         strconv.FormatInt(l.ID, 10),
		Name:       l.Name,
		Purpose:    l.Purpose,
		Enabled:    l.Enabled,
		Recipients: recipients,
	}
}
