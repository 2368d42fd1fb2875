package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"payos/internal/platform/models"
)

const subscriptionColumns = `id, url, events, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at`

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *models.Subscription) error {
	sub.ID = "sub_" + uuid.New().String()
	sub.CreatedAt = time.Now().Unix()
	sub.UpdatedAt = sub.CreatedAt
	sub.Status = "active"

	eventsJSON, err := json.Marshal(sub.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subscriptions (id, url, events, secret, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, sub.ID, sub.URL, string(eventsJSON), sub.Secret, sub.Status, sub.CreatedAt, sub.UpdatedAt)
	return err
}

// GetByID returns nil, nil when the subscription does not exist.
func (r *SubscriptionRepository) GetByID(id string) (*models.Subscription, error) {
	row := r.db.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SubscriptionRepository) List() ([]*models.Subscription, error) {
	rows, err := r.db.Query(`SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []*models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListActiveFor returns active subscriptions listening for eventType or "*".
// Events are stored as a JSON array, so matching happens here rather than in SQL.
func (r *SubscriptionRepository) ListActiveFor(eventType string) ([]*models.Subscription, error) {
	rows, err := r.db.Query(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE status = ?`, "active")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		if sub.Wants(eventType) {
			matched = append(matched, sub)
		}
	}
	return matched, rows.Err()
}

// Delete reports whether a row was removed.
func (r *SubscriptionRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SubscriptionRepository) RecordSuccess(id string, at int64) error {
	_, err := r.db.Exec(`UPDATE subscriptions SET last_triggered_at = ?, retry_count = 0, last_error = NULL, updated_at = ? WHERE id = ?`,
		at, time.Now().Unix(), id)
	return err
}

func (r *SubscriptionRepository) RecordFailure(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE subscriptions SET retry_count = retry_count + 1, last_error = ?, updated_at = ? WHERE id = ?`,
		lastError, time.Now().Unix(), id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(s scanner) (*models.Subscription, error) {
	var sub models.Subscription
	var eventsStr string
	var lastTriggeredAt sql.NullInt64
	var lastError sql.NullString

	err := s.Scan(&sub.ID, &sub.URL, &eventsStr, &sub.Secret, &sub.Status, &sub.RetryCount,
		&lastTriggeredAt, &lastError, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastTriggeredAt.Valid {
		sub.LastTriggeredAt = lastTriggeredAt.Int64
	}
	if lastError.Valid {
		sub.LastError = lastError.String
	}
	if err := json.Unmarshal([]byte(eventsStr), &sub.Events); err != nil {
		return nil, err
	}
	return &sub, nil
}
