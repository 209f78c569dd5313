package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"realtime-translation-relay/internal/observability/logging"
	"realtime-translation-relay/internal/service/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// Browser clients connect from arbitrary origins; auth is the token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// realtimeRelay upgrades the connection and runs a relay session for its
// lifetime. The access token travels in the token query parameter because
// browser WebSocket clients cannot set an Authorization header. A bad
// token closes the socket with a policy violation before any upstream
// work happens.
func (h *handlers) realtimeRelay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	token := r.URL.Query().Get("token")
	claims, err := h.deps.Verifier.Verify(token)
	if err != nil {
		h.log.Warn().Err(err).Msg("Rejected realtime connection")
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}

	sessionID := uuid.NewString()
	log := logging.WithSession(sessionID, claims.UserID())
	log.Info().Msg("Realtime translation session accepted")

	session := realtime.NewSession(realtime.SessionConfig{
		ID:          sessionID,
		UserID:      claims.UserID(),
		AccessToken: token,
		Client:      conn,
		Upstream: realtime.NewUpstream(
			h.deps.Cfg.OpenAI.RealtimeURL,
			h.deps.Cfg.OpenAI.APIKey,
			logging.WithUpstream(sessionID),
		),
		Store:      h.deps.Store,
		Publisher:  h.deps.Publisher,
		TargetLang: r.URL.Query().Get("target_lang"),
	})
	session.Run(r.Context())
}
