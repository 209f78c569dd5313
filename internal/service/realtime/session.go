// Package realtime implements the bidirectional translation relay: one
// client-facing WebSocket, one upstream connection to the realtime speech
// model, and the turn-scoped state that bridges the two event streams.
package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"realtime-translation-relay/internal/models"
	"realtime-translation-relay/internal/observability/logging"
	"realtime-translation-relay/internal/observability/metrics"
)

const (
	defaultTargetLang = "en"
	teardownTimeout   = 5 * time.Second
	persistTimeout    = 10 * time.Second
)

// State is the lifecycle state of a relay session.
type State int

const (
	StateConnecting State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateDraining:
		return "DRAINING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Persister stores one completed translation turn. Failures are logged by
// the session and never affect its behavior.
type Persister interface {
	SaveTranslation(userID, inputText, outputText, sourceLang, targetLang, modality, accessToken string) (*models.Translation, error)
}

// TurnPublisher emits a turn-completed event, fire and forget.
type TurnPublisher interface {
	PublishTurnCompleted(ctx context.Context, key string, event any) error
}

// SessionConfig carries everything a Session needs.
type SessionConfig struct {
	ID          string
	UserID      string
	AccessToken string
	Client      *websocket.Conn
	Upstream    *Upstream
	Store       Persister
	Publisher   TurnPublisher
	TargetLang  string
}

// Session relays one client's audio to the upstream model and the model's
// translation events back to the client. Each session owns both connections
// exclusively and is independent of every other session.
type Session struct {
	id        string
	userID    string
	token     string
	client    *websocket.Conn
	upstream  *Upstream
	store     Persister
	publisher TurnPublisher
	metrics   *metrics.Metrics
	log       zerolog.Logger

	// writeMu serializes writes to the client connection; both the
	// foreground loop and the upstream listener write to it.
	writeMu sync.Mutex

	// targetLang is written by the foreground loop and read by the
	// listener; initialized is written once by the listener on
	// session.created and read by the foreground loop.
	langMu      sync.Mutex
	targetLang  string
	initialized atomic.Bool

	stateMu sync.Mutex
	state   State

	// turn is mutated only by the upstream listener goroutine.
	turn Tracker
}

// NewSession constructs a session around an accepted client connection.
func NewSession(cfg SessionConfig) *Session {
	lang := cfg.TargetLang
	if lang == "" {
		lang = defaultTargetLang
	}
	return &Session{
		id:         cfg.ID,
		userID:     cfg.UserID,
		token:      cfg.AccessToken,
		client:     cfg.Client,
		upstream:   cfg.Upstream,
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		metrics:    metrics.DefaultMetrics,
		log:        logging.WithSession(cfg.ID, cfg.UserID),
		targetLang: lang,
		state:      StateConnecting,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.stateMu.Lock()
	prev := s.state
	s.state = next
	s.stateMu.Unlock()
	if prev != next {
		s.log.Debug().Stringer("from", prev).Stringer("to", next).Msg("Session state changed")
	}
}

// TargetLang returns the current target language code.
func (s *Session) TargetLang() string {
	s.langMu.Lock()
	defer s.langMu.Unlock()
	return s.targetLang
}

func (s *Session) setTargetLang(lang string) {
	s.langMu.Lock()
	s.targetLang = lang
	s.langMu.Unlock()
}

// Run drives the session to completion: connect upstream, start the
// listener, serve client messages, then tear everything down. Every exit
// path funnels through the same teardown sequence, so neither the listener
// goroutine nor the upstream connection can outlive the session.
func (s *Session) Run(ctx context.Context) {
	start := time.Now()
	s.metrics.RecordSessionStart()
	failed := false
	defer func() {
		s.metrics.RecordSessionEnd(failed, time.Since(start).Seconds())
	}()

	if !s.upstream.Connect(ctx) {
		failed = true
		s.writeClient(errorEvent("Failed to connect to OpenAI Realtime API"))
		s.setState(StateClosed)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := s.upstream.Events(ctx)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		for ev := range events {
			s.handleUpstreamEvent(ev)
		}
	}()

	defer func() {
		s.setState(StateDraining)
		// Cancel the listener and wait for it before touching the
		// connection, so the listener observes a clean cancellation
		// instead of a connection error.
		cancel()
		select {
		case <-listenerDone:
		case <-time.After(teardownTimeout):
			s.log.Warn().Msg("Timed out waiting for upstream listener to stop")
		}
		s.upstream.Disconnect()
		s.setState(StateClosed)
		s.log.Info().Dur("sessionDuration", time.Since(start)).Msg("Relay session closed")
	}()

	s.setState(StateActive)
	s.serveClient()
}

// serveClient reads client frames until stop, disconnect, or a read error.
func (s *Session) serveClient() {
	for {
		_, data, err := s.client.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.log.Info().Msg("Client disconnected")
			} else {
				s.log.Warn().Err(err).Msg("Client read failed")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.writeClient(errorEvent("Invalid JSON message"))
			continue
		}

		switch msg.Type {
		case MessageConfig:
			s.handleConfig(msg.TargetLang)
		case MessageAudio:
			s.handleAudio(msg.Data)
		case MessageCommit:
			if err := s.upstream.CommitAndRequestResponse(); err != nil {
				s.log.Error().Err(err).Msg("Commit failed")
			}
		case MessageStart:
			s.writeClient(notice("session_started", "Real-time translation session started"))
		case MessageStop:
			s.writeClient(notice("session_stopped", "Real-time translation session stopped"))
			return
		default:
			s.writeClient(errorEvent("Invalid JSON message"))
		}
	}
}

// handleConfig updates the target language. The session-update frame is
// only sent once the upstream session exists; before that the language is
// held and takes effect with the config send triggered by session.created.
func (s *Session) handleConfig(lang string) {
	if lang == "" {
		lang = defaultTargetLang
	}
	s.setTargetLang(lang)

	if s.initialized.Load() {
		if err := s.upstream.SendSessionConfig(lang); err != nil {
			s.log.Error().Err(err).Msg("Sending session config failed")
		}
	}

	s.writeClient(ClientEvent{Type: "config_updated", TargetLang: lang})
	s.log.Info().Str("targetLang", lang).Msg("Updated target language")
}

// handleAudio decodes a base64 chunk and forwards it upstream.
func (s *Session) handleAudio(data string) {
	if data == "" {
		return
	}
	audio, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("Invalid base64 audio chunk")
		s.writeClient(errorEvent("Error processing audio: " + err.Error()))
		return
	}
	s.metrics.RecordAudioReceived(len(audio))
	if err := s.upstream.SendAudioChunk(audio); err != nil {
		s.log.Error().Err(err).Msg("Forwarding audio chunk failed")
		s.writeClient(errorEvent("Error processing audio: " + err.Error()))
	}
}

// handleUpstreamEvent applies one upstream event to the turn tracker and
// acts on the result. Runs only on the listener goroutine.
func (s *Session) handleUpstreamEvent(ev ServerEvent) {
	s.metrics.RecordUpstreamEvent(ev.Type)

	res := s.turn.Apply(ev)

	if res.SessionCreated {
		s.initialized.Store(true)
		if err := s.upstream.SendSessionConfig(s.TargetLang()); err != nil {
			s.log.Error().Err(err).Msg("Sending initial session config failed")
		}
	}
	if res.ResponseFailed {
		s.metrics.RecordTurnFailed()
	}

	for _, e := range res.Events {
		s.writeClient(e)
	}

	if res.Persist {
		s.metrics.RecordTurnCompleted()
		transcript, translation := s.turn.Transcript, s.turn.Translation
		targetLang := s.TargetLang()
		go s.persistTurn(transcript, translation, targetLang)
	}
}

// persistTurn saves the completed turn and publishes the turn event.
// Failures here are logged and swallowed; they never reach the client.
func (s *Session) persistTurn(transcript, translation, targetLang string) {
	if s.store != nil {
		if _, err := s.store.SaveTranslation(s.userID, transcript, translation, "auto", targetLang, "realtime_audio", s.token); err != nil {
			s.log.Error().Err(err).Msg("Failed to save realtime translation")
		} else {
			s.log.Info().
				Str("targetLang", targetLang).
				Int("transcriptLen", len(transcript)).
				Int("translationLen", len(translation)).
				Msg("Saved realtime translation")
		}
	}

	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		ev := models.TurnCompleted{
			EventType:   "translation.turn.completed",
			SessionID:   s.id,
			UserID:      s.userID,
			Transcript:  transcript,
			Translation: translation,
			TargetLang:  targetLang,
			Modality:    "realtime_audio",
			Timestamp:   time.Now().UnixMilli(),
		}
		if err := s.publisher.PublishTurnCompleted(ctx, s.id, ev); err != nil {
			s.log.Error().Err(err).Msg("Failed to publish turn event")
		}
	}
}

// writeClient writes one frame to the client connection. Write errors are
// logged and ignored; the read side will surface the disconnect.
func (s *Session) writeClient(ev ClientEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.client.WriteJSON(ev); err != nil {
		s.log.Debug().Err(err).Str("type", ev.Type).Msg("Writing to client failed")
	}
}
