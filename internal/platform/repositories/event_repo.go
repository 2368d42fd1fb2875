package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"payos/internal/platform/models"
)

const eventColumns = `id, type, order_code, payment_link_id, code, amount, signature, payload, status, attempts, last_error, received_at, delivered_at`

// EventRepository stores verified gateway webhooks.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts rec and reports false when an event with the same signature
// was already stored. The gateway retries deliveries, so duplicates are normal.
func (r *EventRepository) Create(rec *models.EventRecord) (bool, error) {
	rec.ID = "evt_" + uuid.New().String()
	rec.ReceivedAt = time.Now().Unix()
	rec.Status = models.EventReceived

	query := `
		INSERT OR IGNORE INTO webhook_events (id, type, order_code, payment_link_id, code, amount, signature, payload, status, attempts, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	res, err := r.db.Exec(query, rec.ID, rec.Type, rec.OrderCode, rec.PaymentLinkID, rec.Code, rec.Amount,
		rec.Signature, string(rec.Payload), rec.Status, rec.ReceivedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetByID returns nil, nil when the event does not exist.
func (r *EventRepository) GetByID(id string) (*models.EventRecord, error) {
	rec, err := scanEvent(r.db.QueryRow(`SELECT `+eventColumns+` FROM webhook_events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *EventRepository) GetBySignature(signature string) (*models.EventRecord, error) {
	rec, err := scanEvent(r.db.QueryRow(`SELECT `+eventColumns+` FROM webhook_events WHERE signature = ?`, signature))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// List returns events newest first together with the total count.
func (r *EventRepository) List(limit, offset int) ([]*models.EventRecord, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM webhook_events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(`SELECT `+eventColumns+` FROM webhook_events ORDER BY received_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	return events, total, err
}

// ListFailed returns failed events that have been attempted fewer than maxAttempts times.
func (r *EventRepository) ListFailed(maxAttempts, limit int) ([]*models.EventRecord, error) {
	rows, err := r.db.Query(`SELECT `+eventColumns+` FROM webhook_events WHERE status = ? AND attempts < ? ORDER BY received_at LIMIT ?`,
		models.EventFailed, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) MarkDelivered(id string, at int64) error {
	_, err := r.db.Exec(`UPDATE webhook_events SET status = ?, attempts = attempts + 1, delivered_at = ?, last_error = NULL WHERE id = ?`,
		models.EventDelivered, at, id)
	return err
}

func (r *EventRepository) MarkFailed(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE webhook_events SET status = ?, attempts = attempts + 1, last_error = ? WHERE id = ?`,
		models.EventFailed, lastError, id)
	return err
}

func (r *EventRepository) MarkSkipped(id string) error {
	_, err := r.db.Exec(`UPDATE webhook_events SET status = ? WHERE id = ?`, models.EventSkipped, id)
	return err
}

func collectEvents(rows *sql.Rows) ([]*models.EventRecord, error) {
	events := []*models.EventRecord{}
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, rec)
	}
	return events, rows.Err()
}

func scanEvent(s scanner) (*models.EventRecord, error) {
	var rec models.EventRecord
	var payload string
	var lastError sql.NullString
	var deliveredAt sql.NullInt64

	err := s.Scan(&rec.ID, &rec.Type, &rec.OrderCode, &rec.PaymentLinkID, &rec.Code, &rec.Amount, &rec.Signature,
		&payload, &rec.Status, &rec.Attempts, &lastError, &rec.ReceivedAt, &deliveredAt)
	if err != nil {
		return nil, err
	}
	rec.Payload = []byte(payload)
	if lastError.Valid {
		rec.LastError = lastError.String
	}
	if deliveredAt.Valid {
		at := deliveredAt.Int64
		rec.DeliveredAt = &at
	}
	return &rec, nil
}
