package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakeUpstreamServer upgrades incoming connections and hands them to fn.
func fakeUpstreamServer(t *testing.T, fn func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrading test connection: %v", err)
			return
		}
		fn(conn)
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func connectedUpstream(t *testing.T, fn func(conn *websocket.Conn)) (*Upstream, *httptest.Server) {
	t.Helper()
	srv, wsURL := fakeUpstreamServer(t, fn)
	u := NewUpstream(wsURL, "test-key", zerolog.Nop())
	if !u.Connect(context.Background()) {
		srv.Close()
		t.Fatal("expected connect to succeed")
	}
	return u, srv
}

func TestConnect_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotBeta string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("OpenAI-Beta")
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	u := NewUpstream("ws"+strings.TrimPrefix(srv.URL, "http"), "sk-test", zerolog.Nop())
	if !u.Connect(context.Background()) {
		t.Fatal("expected connect to succeed")
	}
	defer u.Disconnect()

	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected Authorization header: %s", gotAuth)
	}
	if gotBeta != "realtime=v1" {
		t.Errorf("unexpected OpenAI-Beta header: %s", gotBeta)
	}
}

func TestConnect_FailureReturnsFalse(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"forbidden", http.StatusForbidden},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			u := NewUpstream("ws"+strings.TrimPrefix(srv.URL, "http"), "sk-test", zerolog.Nop())
			if u.Connect(context.Background()) {
				t.Error("expected connect to fail")
			}
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	u := NewUpstream("ws://127.0.0.1:1/realtime", "sk-test", zerolog.Nop())
	if u.Connect(context.Background()) {
		t.Error("expected connect to fail against closed port")
	}
}

func TestCommitAndRequestResponse_FrameOrder(t *testing.T) {
	frames := make(chan string, 4)
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f controlFrame
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			frames <- f.Type
		}
	})
	defer srv.Close()
	defer u.Disconnect()

	if err := u.CommitAndRequestResponse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"input_audio_buffer.commit", "response.create"}
	for i, expected := range want {
		select {
		case got := <-frames:
			if got != expected {
				t.Errorf("frame %d: expected %q, got %q", i, expected, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
}

func TestSendSessionConfig_Payload(t *testing.T) {
	frames := make(chan sessionUpdateFrame, 1)
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var f sessionUpdateFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		frames <- f
	})
	defer srv.Close()
	defer u.Disconnect()

	if err := u.SendSessionConfig("es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case f := <-frames:
		if f.Type != "session.update" {
			t.Errorf("unexpected frame type: %s", f.Type)
		}
		s := f.Session
		if s.Voice != "alloy" || s.InputAudioFormat != "pcm16" || s.OutputAudioFormat != "pcm16" {
			t.Errorf("unexpected audio config: %+v", s)
		}
		if s.Temperature != 0.8 {
			t.Errorf("unexpected temperature: %v", s.Temperature)
		}
		td := s.TurnDetection
		if td.Type != "server_vad" || td.Threshold != 0.5 || td.PrefixPaddingMs != 300 || td.SilenceDurationMs != 500 {
			t.Errorf("unexpected turn detection: %+v", td)
		}
		if !strings.Contains(s.Instructions, "Spanish") {
			t.Errorf("expected instructions to name the target language, got %q", s.Instructions)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session config frame")
	}
}

func TestSendAudioChunk_EncodesBase64(t *testing.T) {
	frames := make(chan audioAppendFrame, 1)
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var f audioAppendFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		frames <- f
	})
	defer srv.Close()
	defer u.Disconnect()

	raw := []byte{0x01, 0x02, 0x03, 0x04}
	if err := u.SendAudioChunk(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case f := <-frames:
		if f.Type != "input_audio_buffer.append" {
			t.Errorf("unexpected frame type: %s", f.Type)
		}
		decoded, err := base64.StdEncoding.DecodeString(f.Audio)
		if err != nil {
			t.Fatalf("audio payload is not valid base64: %v", err)
		}
		if string(decoded) != string(raw) {
			t.Errorf("audio payload round-trip mismatch: %v", decoded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audio frame")
	}
}

func TestSends_NoOpWhenDisconnected(t *testing.T) {
	u := NewUpstream("ws://unused", "sk-test", zerolog.Nop())

	if err := u.SendSessionConfig("es"); err != nil {
		t.Errorf("SendSessionConfig: expected no-op, got %v", err)
	}
	if err := u.SendAudioChunk([]byte{1}); err != nil {
		t.Errorf("SendAudioChunk: expected no-op, got %v", err)
	}
	if err := u.CommitAndRequestResponse(); err != nil {
		t.Errorf("CommitAndRequestResponse: expected no-op, got %v", err)
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		conn.ReadMessage()
		conn.Close()
	})
	defer srv.Close()

	u.Disconnect()
	u.Disconnect()
	u.Disconnect()
}

func TestEvents_DecodesAndSkipsMalformed(t *testing.T) {
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.created"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`this is not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.audio_transcript.delta","delta":"hola"}`))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer srv.Close()
	defer u.Disconnect()

	events := u.Events(context.Background())

	var got []ServerEvent
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if len(got) != 2 {
					t.Fatalf("expected 2 decoded events, got %d: %+v", len(got), got)
				}
				if got[0].Type != "session.created" {
					t.Errorf("unexpected first event: %+v", got[0])
				}
				if got[1].Type != "response.audio_transcript.delta" || got[1].Delta != "hola" {
					t.Errorf("unexpected second event: %+v", got[1])
				}
				return
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatal("timed out waiting for events channel to close")
		}
	}
}

func TestEvents_CancelUnblocksRead(t *testing.T) {
	u, srv := connectedUpstream(t, func(conn *websocket.Conn) {
		// Never send anything; hold the connection open.
		conn.ReadMessage()
		conn.Close()
	})
	defer srv.Close()
	defer u.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	events := u.Events(ctx)

	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected channel close, got an event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after cancellation")
	}
}

func TestEvents_NilConnection(t *testing.T) {
	u := NewUpstream("ws://unused", "sk-test", zerolog.Nop())
	events := u.Events(context.Background())
	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel for unconnected client")
		}
	case <-time.After(time.Second):
		t.Fatal("expected immediately closed channel")
	}
}
