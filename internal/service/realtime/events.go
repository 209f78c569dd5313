package realtime

import "encoding/json"

// Upstream server event types the relay reacts to. The upstream vocabulary
// is open-ended; anything not listed here is ignored.
const (
	EventSessionCreated                = "session.created"
	EventSessionUpdated                = "session.updated"
	EventInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"
	EventInputTranscriptionCompleted   = "conversation.item.input_audio_transcription.completed"
	EventResponseCreated               = "response.created"
	EventResponseDone                  = "response.done"
	EventResponseAudioTranscriptDelta  = "response.audio_transcript.delta"
	EventResponseAudioTranscriptDone   = "response.audio_transcript.done"
	EventResponseAudioDelta            = "response.audio.delta"
	EventResponseAudioDone             = "response.audio.done"
	EventResponseTextDelta             = "response.text.delta"
	EventResponseTextDone              = "response.text.done"
	EventError                         = "error"
)

// Client event types sent to the upstream.
const (
	frameSessionUpdate  = "session.update"
	frameAudioAppend    = "input_audio_buffer.append"
	frameAudioCommit    = "input_audio_buffer.commit"
	frameResponseCreate = "response.create"
)

// Response status values reported by response.done.
const (
	responseStatusCompleted = "completed"
	responseStatusFailed    = "failed"
)

// ServerEvent is one decoded upstream event. Different event types populate
// different subsets of the fields; nested item/part metadata is carried as
// raw JSON and never inspected.
type ServerEvent struct {
	EventID    string          `json:"event_id,omitempty"`
	Type       string          `json:"type"`
	Transcript string          `json:"transcript,omitempty"`
	Delta      string          `json:"delta,omitempty"`
	Text       string          `json:"text,omitempty"`
	Response   *ResponseInfo   `json:"response,omitempty"`
	Error      *UpstreamError  `json:"error,omitempty"`
	Item       json.RawMessage `json:"item,omitempty"`
	Part       json.RawMessage `json:"part,omitempty"`
}

// ResponseInfo carries the status of a finished model response.
type ResponseInfo struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// UpstreamError is the payload of an explicit upstream "error" event.
type UpstreamError struct {
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// Notification renders the error as "code: message", omitting an empty code.
func (e *UpstreamError) Notification() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// sessionUpdateFrame configures the upstream session.
type sessionUpdateFrame struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Modalities              []string           `json:"modalities"`
	Instructions            string             `json:"instructions"`
	Voice                   string             `json:"voice"`
	InputAudioFormat        string             `json:"input_audio_format"`
	OutputAudioFormat       string             `json:"output_audio_format"`
	InputAudioTranscription transcriptionModel `json:"input_audio_transcription"`
	TurnDetection           turnDetection      `json:"turn_detection"`
	Temperature             float64            `json:"temperature"`
}

type transcriptionModel struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// audioAppendFrame appends base64 audio to the upstream input buffer.
type audioAppendFrame struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// controlFrame is a bare typed frame (buffer commit).
type controlFrame struct {
	Type string `json:"type"`
}

// responseCreateFrame asks the upstream to generate a translated response
// for the most recently committed buffer.
type responseCreateFrame struct {
	Type     string         `json:"type"`
	Response responseParams `json:"response"`
}

type responseParams struct {
	Modalities   []string `json:"modalities"`
	Instructions string   `json:"instructions"`
}
