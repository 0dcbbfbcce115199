package store

import (
	"context"
	"fmt"
)

// MailingList is a named set of recipients notified for a given alert
// purpose. Disabled lists are kept but skipped at fan-out time.
type MailingList struct {
	ID         int64    `db:"id"`
	Name       string   `db:"name"`
	Purpose    string   `db:"purpose"`
	Enabled    bool     `db:"enabled"`
	Recipients []string `db:"-"`
}

// CreateMailingList inserts a list with its recipients and returns the
// stored list with its id set.
func (s *Store) CreateMailingList(ctx context.Context, ml MailingList) (MailingList, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return MailingList{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO mailing_lists (name, purpose, enabled)
		VALUES (:name, :purpose, :enabled)`,
		map[string]interface{}{
			"name":    ml.Name,
			"purpose": ml.Purpose,
			"enabled": ml.Enabled,
		})
	if err != nil {
		if isConstraint(err) {
			return MailingList{}, fmt.Errorf("mailing list %q: %w", ml.Name, ErrExists)
		}
		return MailingList{}, fmt.Errorf("failed to insert mailing list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return MailingList{}, fmt.Errorf("failed to read insert id: %w", err)
	}

	for _, addr := range ml.Recipients {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO mailing_list_recipients (list_id, address) VALUES (?, ?)`,
			id, addr)
		if err != nil {
			return MailingList{}, fmt.Errorf("failed to insert recipient: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return MailingList{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	ml.ID = id
	return ml, nil
}

// ListMailingLists returns every list with its recipients, ordered by name.
func (s *Store) ListMailingLists(ctx context.Context) ([]MailingList, error) {
	var lists []MailingList
	err := s.db.SelectContext(ctx, &lists,
		`SELECT id, name, purpose, enabled FROM mailing_lists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mailing lists: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT list_id, address FROM mailing_list_recipients ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	byList := make(map[int64][]string)
	for rows.Next() {
		var listID int64
		var addr string
		if err := rows.Scan(&listID, &addr); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		byList[listID] = append(byList[listID], addr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i := range lists {
		lists[i].Recipients = byList[lists[i].ID]
	}
	return lists, nil
}

// RecipientsFor returns the distinct addresses subscribed to a purpose
// through enabled lists.
func (s *Store) RecipientsFor(ctx context.Context, purpose string) ([]string, error) {
	var addrs []string
	err := s.db.SelectContext(ctx, &addrs, `
		SELECT DISTINCT r.address
		FROM mailing_list_recipients r
		JOIN mailing_lists l ON l.id = r.list_id
		WHERE l.enabled = 1 AND l.purpose = ?
		ORDER BY r.address`,
		purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	return addrs, nil
}
