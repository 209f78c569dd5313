package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"realtime-translation-relay/internal/language"
	"realtime-translation-relay/internal/observability/metrics"
)

const connectTimeout = 10 * time.Second

// Upstream owns the single WebSocket connection to the realtime speech
// model. All writes are serialized through a mutex; reads happen on the
// goroutine spawned by Events.
type Upstream struct {
	url    string
	apiKey string
	log    zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewUpstream creates an unconnected upstream client.
func NewUpstream(url, apiKey string, log zerolog.Logger) *Upstream {
	return &Upstream{
		url:    url,
		apiKey: apiKey,
		log:    log,
	}
}

// Connect dials the upstream with a bounded timeout. It reports success as
// a boolean and never leaks a half-open connection: every failure mode
// (timeout, 401, 403, 404, anything else) is logged and results in false.
func (u *Upstream) Connect(ctx context.Context) bool {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+u.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := &websocket.Dialer{HandshakeTimeout: connectTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, u.url, header)
	if err != nil {
		evt := u.log.Error().Err(err).Str("url", u.url)
		if resp != nil {
			evt = evt.Int("status", resp.StatusCode)
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				evt.Msg("Upstream authentication failed, check the API key")
			case http.StatusForbidden:
				evt.Msg("Upstream access forbidden, realtime API may require special access")
			case http.StatusNotFound:
				evt.Msg("Upstream endpoint not found")
			default:
				evt.Msg("Upstream connection failed")
			}
		} else if dialCtx.Err() != nil {
			evt.Msg("Upstream connection timed out")
		} else {
			evt.Msg("Upstream connection failed")
		}
		metrics.DefaultMetrics.RecordUpstreamConnectError()
		return false
	}

	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()

	u.log.Info().Str("url", u.url).Msg("Connected to realtime upstream")
	return true
}

// SendSessionConfig transmits the session configuration for the given
// target language. No-op when not connected.
func (u *Upstream) SendSessionConfig(targetLang string) error {
	frame := sessionUpdateFrame{
		Type: frameSessionUpdate,
		Session: sessionConfig{
			Modalities:              []string{"text", "audio"},
			Instructions:            translationInstructions(targetLang),
			Voice:                   "alloy",
			InputAudioFormat:        "pcm16",
			OutputAudioFormat:       "pcm16",
			InputAudioTranscription: transcriptionModel{Model: "whisper-1"},
			TurnDetection: turnDetection{
				Type:              "server_vad",
				Threshold:         0.5,
				PrefixPaddingMs:   300,
				SilenceDurationMs: 500,
			},
			Temperature: 0.8,
		},
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	if err := u.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("sending session config: %w", err)
	}
	u.log.Debug().Str("targetLang", targetLang).Msg("Sent session config")
	return nil
}

// SendAudioChunk base64-encodes raw audio and appends it to the upstream
// input buffer. No-op when not connected.
func (u *Upstream) SendAudioChunk(audio []byte) error {
	frame := audioAppendFrame{
		Type:  frameAudioAppend,
		Audio: base64.StdEncoding.EncodeToString(audio),
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	if err := u.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("sending audio chunk: %w", err)
	}
	return nil
}

// CommitAndRequestResponse commits the input buffer and immediately
// requests a translated response. Both frames go out under one mutex hold
// so no other frame can interleave between them; the upstream scopes the
// response to the most recently committed buffer.
func (u *Upstream) CommitAndRequestResponse() error {
	responseFrame := responseCreateFrame{
		Type: frameResponseCreate,
		Response: responseParams{
			Modalities:   []string{"text", "audio"},
			Instructions: "Translate the speech you just heard and respond in audio.",
		},
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	if err := u.conn.WriteJSON(controlFrame{Type: frameAudioCommit}); err != nil {
		return fmt.Errorf("committing audio buffer: %w", err)
	}
	if err := u.conn.WriteJSON(responseFrame); err != nil {
		return fmt.Errorf("requesting response: %w", err)
	}
	u.log.Debug().Msg("Committed audio buffer and requested response")
	return nil
}

// Disconnect closes the connection if open. Idempotent.
func (u *Upstream) Disconnect() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return
	}
	if err := u.conn.Close(); err != nil {
		u.log.Debug().Err(err).Msg("Closing upstream connection")
	}
	u.conn = nil
}

// Events starts draining the connection and returns a channel of decoded
// events. The channel closes when the connection closes (normally or not)
// or when ctx is cancelled; a cancelled ctx unblocks a pending read via a
// read deadline without closing the connection, so teardown can disconnect
// afterwards in a deterministic order. Malformed frames are skipped with a
// diagnostic.
func (u *Upstream) Events(ctx context.Context) <-chan ServerEvent {
	out := make(chan ServerEvent, 16)

	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		close(out)
		return out
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				switch {
				case ctx.Err() != nil:
					u.log.Debug().Msg("Upstream listener cancelled")
				case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
					u.log.Info().Msg("Upstream connection closed")
				default:
					u.log.Warn().Err(err).Msg("Upstream read failed")
				}
				return
			}

			var ev ServerEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				u.log.Debug().Err(err).Msg("Skipping malformed upstream frame")
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// translationInstructions builds the natural-language prompt for the
// session configuration from the target language's display name.
func translationInstructions(targetLang string) string {
	name := language.NameFor(targetLang)
	return fmt.Sprintf(
		"You are a real-time speech translator. When you hear speech in any language, "+
			"immediately translate it to %s and speak the translation naturally. "+
			"Do not explain, just translate and speak. Maintain the speaker's tone and emotion.",
		name,
	)
}
