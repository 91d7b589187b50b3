package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Audit actions.
const (
	auditRegisterOK         = "auth.register.ok"
	auditRegisterDuplicate  = "auth.register.duplicate"
	auditLoginOK            = "auth.login.ok"
	auditLoginFailed        = "auth.login.failed"
	auditUpdateOK           = "auth.update.ok"
	auditUpdateUnauthorized = "auth.update.unauthorized"
)

type auditEntry struct {
	action string
	login  *string // nil when no user is known
	ip     net.IP
	ua     string
	meta   map[string]any
}

// insertAudit records entry in audit_log when a pool is configured and logs it otherwise.
// Failures are logged and never surface to the client.
func (h *Handler) insertAudit(ctx context.Context, e auditEntry) {
	if h == nil {
		return
	}
	action := strings.TrimSpace(e.action)
	if action == "" {
		return
	}

	if h.pool == nil {
		attrs := []any{"action", action}
		if e.login != nil {
			attrs = append(attrs, "login", *e.login)
		}
		if e.ip != nil {
			attrs = append(attrs, "ip", e.ip.String())
		}
		for k, v := range e.meta {
			attrs = append(attrs, k, v)
		}
		h.log.Info("auth.audit", attrs...)
		return
	}

	var ipVal any
	if e.ip != nil {
		ipVal = e.ip.String()
	}

	var metaVal *string
	if len(e.meta) > 0 {
		if b, err := json.Marshal(e.meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := h.pool.Exec(ctx, `
		INSERT INTO `+pgx.Identifier{h.schema, "audit_log"}.Sanitize()+` (
			action, login, created_at, ip, user_agent, meta
		) VALUES ($1, $2, now(), $3, $4, $5::jsonb)
	`, action, e.login, ipVal, trimOrNil(e.ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
