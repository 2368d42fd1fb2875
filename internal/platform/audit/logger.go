package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apicontext "payos/internal/api/context"
	"payos/internal/platform/auth"
	"payos/internal/platform/models"
)

// Logger records operator actions in audit_logs. Inserts happen in the
// background so a slow disk never delays the admin response.
type Logger struct {
	db *sql.DB
	wg sync.WaitGroup
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, action, resourceType, resourceID string, metadata map[string]any) {
	actor := "system"
	if claims, ok := ctx.Value(apicontext.Claims).(*auth.Claims); ok {
		actor = claims.Username
	}

	ip := "unknown"
	ua := "unknown"
	if req, ok := apicontext.RequestFrom(ctx); ok {
		ip = ClientIP(req.RemoteAddr, req.Header.Get("X-Forwarded-For"))
		ua = req.UserAgent()
	}

	entry := &models.AuditLog{
		ID:           "audit_" + uuid.New().String(),
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    ip,
		UserAgent:    ua,
		CreatedAt:    time.Now().Unix(),
	}
	metaJSON, _ := json.Marshal(metadata)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		query := `
			INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := l.db.Exec(query, entry.ID, entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID,
			string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt)
		if err != nil {
			log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
		}
	}()
}

// Wait blocks until pending inserts are written.
func (l *Logger) Wait() {
	l.wg.Wait()
}

// List returns audit entries newest first.
func (l *Logger) List(limit, offset int) ([]*models.AuditLog, error) {
	rows, err := l.db.Query(`
		SELECT id, actor, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC, id LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.AuditLog{}
	for rows.Next() {
		var e models.AuditLog
		var meta, ip, ua sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID, &meta, &ip, &ua, &e.CreatedAt); err != nil {
			return nil, err
		}
		if meta.Valid && meta.String != "" {
			json.Unmarshal([]byte(meta.String), &e.Metadata)
		}
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ClientIP prefers the first X-Forwarded-For hop and falls back to the
// host part of remoteAddr.
func ClientIP(remoteAddr, forwardedFor string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
