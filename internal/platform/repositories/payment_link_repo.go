package repositories

import (
	"database/sql"
	"time"

	"payos/internal/platform/models"
)

const paymentLinkColumns = `id, order_code, amount, amount_paid, description, status, checkout_url, qr_code, created_at, updated_at, last_synced_at`

// PaymentLinkRepository tracks links created through the admin API.
type PaymentLinkRepository struct {
	db *sql.DB
}

func NewPaymentLinkRepository(db *sql.DB) *PaymentLinkRepository {
	return &PaymentLinkRepository{db: db}
}

// Upsert stores link keyed by its order code.
func (r *PaymentLinkRepository) Upsert(link *models.PaymentLinkRecord) error {
	now := time.Now().Unix()
	if link.CreatedAt == 0 {
		link.CreatedAt = now
	}
	link.UpdatedAt = now

	query := `
		INSERT INTO payment_links (id, order_code, amount, amount_paid, description, status, checkout_url, qr_code, created_at, updated_at, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_code) DO UPDATE SET
			id = excluded.id,
			amount_paid = excluded.amount_paid,
			status = excluded.status,
			checkout_url = CASE WHEN excluded.checkout_url != '' THEN excluded.checkout_url ELSE payment_links.checkout_url END,
			qr_code = CASE WHEN excluded.qr_code != '' THEN excluded.qr_code ELSE payment_links.qr_code END,
			updated_at = excluded.updated_at,
			last_synced_at = excluded.last_synced_at
	`
	_, err := r.db.Exec(query, link.ID, link.OrderCode, link.Amount, link.AmountPaid, link.Description, string(link.Status),
		link.CheckoutURL, link.QRCode, link.CreatedAt, link.UpdatedAt, nullInt(link.LastSyncedAt))
	return err
}

// GetByID accepts the gateway payment link id. It returns nil, nil when not found.
func (r *PaymentLinkRepository) GetByID(id string) (*models.PaymentLinkRecord, error) {
	link, err := scanPaymentLink(r.db.QueryRow(`SELECT `+paymentLinkColumns+` FROM payment_links WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return link, err
}

func (r *PaymentLinkRepository) GetByOrderCode(orderCode int64) (*models.PaymentLinkRecord, error) {
	link, err := scanPaymentLink(r.db.QueryRow(`SELECT `+paymentLinkColumns+` FROM payment_links WHERE order_code = ?`, orderCode))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return link, err
}

// UpdateStatus records a status seen on the gateway or in a webhook.
func (r *PaymentLinkRepository) UpdateStatus(orderCode int64, status models.PaymentLinkStatus, amountPaid int64) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`UPDATE payment_links SET status = ?, amount_paid = ?, updated_at = ?, last_synced_at = ? WHERE order_code = ?`,
		string(status), amountPaid, now, now, orderCode)
	return err
}

// ListPendingBefore returns PENDING links created before the cutoff.
func (r *PaymentLinkRepository) ListPendingBefore(cutoff int64, limit int) ([]*models.PaymentLinkRecord, error) {
	rows, err := r.db.Query(`SELECT `+paymentLinkColumns+` FROM payment_links WHERE status = ? AND created_at < ? ORDER BY created_at LIMIT ?`,
		string(models.PaymentLinkPending), cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []*models.PaymentLinkRecord{}
	for rows.Next() {
		link, err := scanPaymentLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func scanPaymentLink(s scanner) (*models.PaymentLinkRecord, error) {
	var link models.PaymentLinkRecord
	var status string
	var lastSynced sql.NullInt64

	err := s.Scan(&link.ID, &link.OrderCode, &link.Amount, &link.AmountPaid, &link.Description, &status,
		&link.CheckoutURL, &link.QRCode, &link.CreatedAt, &link.UpdatedAt, &lastSynced)
	if err != nil {
		return nil, err
	}
	link.Status = models.PaymentLinkStatus(status)
	if lastSynced.Valid {
		at := lastSynced.Int64
		link.LastSyncedAt = &at
	}
	return &link, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
