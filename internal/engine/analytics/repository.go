package analytics

import (
	"database/sql"
	"time"

	"payos/internal/pkg/errors"
	"payos/internal/platform/models"
)

const dateLayout = "2006-01-02"

// DailyStat summarises the webhooks received on one UTC day.
type DailyStat struct {
	Date             string `json:"date"`
	Events           int    `json:"events"`
	Succeeded        int    `json:"succeeded"`
	Failed           int    `json:"failed"`
	AmountSucceeded  int64  `json:"amount_succeeded"`
	Delivered        int    `json:"delivered"`
	DeliveryFailed   int    `json:"delivery_failed"`
	UniqueOrderCodes int    `json:"unique_order_codes"`
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// DailyStats aggregates webhook_events per day between startDate and endDate
// (inclusive, YYYY-MM-DD). Empty bounds default to the last 7 days.
func (r *Repository) DailyStats(startDate, endDate string) ([]DailyStat, error) {
	start, end, err := r.bounds(startDate, endDate)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT date(received_at, 'unixepoch') AS day,
			COUNT(*),
			SUM(CASE WHEN type = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = ? THEN amount ELSE 0 END),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			COUNT(DISTINCT order_code)
		FROM webhook_events
		WHERE received_at >= ? AND received_at < ?
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := r.db.Query(query,
		models.EventPaymentSucceeded, models.EventPaymentFailed, models.EventPaymentSucceeded,
		models.EventDelivered, models.EventFailed,
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []DailyStat{}
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Date, &s.Events, &s.Succeeded, &s.Failed, &s.AmountSucceeded,
			&s.Delivered, &s.DeliveryFailed, &s.UniqueOrderCodes); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// bounds turns the inclusive date range into [start, end) unix bounds.
func (r *Repository) bounds(startDate, endDate string) (time.Time, time.Time, error) {
	today := r.now().UTC().Truncate(24 * time.Hour)

	end := today
	if endDate != "" {
		t, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(errors.KindValidation, "to must be a date like 2006-01-02", err)
		}
		end = t
	}
	start := end.AddDate(0, 0, -6)
	if startDate != "" {
		t, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(errors.KindValidation, "from must be a date like 2006-01-02", err)
		}
		start = t
	}
	return start, end.AddDate(0, 0, 1), nil
}
