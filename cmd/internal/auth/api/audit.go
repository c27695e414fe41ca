package authapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"authgate/cmd/identity"
	"authgate/cmd/internal/requestid"
)

// audit writes one auth.audit line. Secrets never reach it: only the
// normalized username, the outcome and request metadata are logged.
func (h *Handler) audit(ctx context.Context, r *http.Request, action, username, result string) {
	if h == nil || h.log == nil {
		return
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	level := slog.LevelInfo
	if result != "success" {
		level = slog.LevelWarn
	}
	h.log.Log(ctx, level, "auth.audit",
		"action", action,
		"result", result,
		"username", identity.NormalizeUsername(username),
		"request_id", requestid.From(ctx),
		"remote", r.RemoteAddr,
		"user_agent", strings.TrimSpace(r.UserAgent()),
	)
}
