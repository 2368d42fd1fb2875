package repositories

import (
	"database/sql"
	"time"

	"payos/internal/platform/models"
)

// IdempotencyRepository remembers responses of mutating admin calls per
// (scope, key) so a retried request replays the first answer.
type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns nil, nil when the key is unknown or older than notBefore.
func (r *IdempotencyRepository) Get(scope, key string, notBefore int64) (*models.IdempotencyKey, error) {
	var k models.IdempotencyKey
	var body string
	err := r.db.QueryRow(`SELECT key, scope, status_code, response_body, created_at FROM idempotency_keys WHERE scope = ? AND key = ? AND created_at >= ?`,
		scope, key, notBefore).Scan(&k.Key, &k.Scope, &k.StatusCode, &body, &k.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	k.ResponseBody = []byte(body)
	return &k, nil
}

// Save stores the response. A concurrent first write wins.
func (r *IdempotencyRepository) Save(k *models.IdempotencyKey) error {
	if k.CreatedAt == 0 {
		k.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`INSERT OR REPLACE INTO idempotency_keys (key, scope, status_code, response_body, created_at) VALUES (?, ?, ?, ?, ?)`,
		k.Key, k.Scope, k.StatusCode, string(k.ResponseBody), k.CreatedAt)
	return err
}

// DeleteBefore prunes keys created before cutoff and returns how many were removed.
func (r *IdempotencyRepository) DeleteBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM idempotency_keys WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
