package realtime

// Client-facing message vocabulary: JSON frames exchanged with the end user
// over the relay WebSocket.

// ClientMessage is one inbound frame from the end user.
type ClientMessage struct {
	Type       string `json:"type"`
	TargetLang string `json:"target_lang,omitempty"`
	Data       string `json:"data,omitempty"`
}

// Inbound message types.
const (
	MessageConfig = "config"
	MessageAudio  = "audio"
	MessageCommit = "commit"
	MessageStart  = "start"
	MessageStop   = "stop"
)

// ClientEvent is one outbound frame to the end user. Fields are populated
// per message type; is_final is a pointer so delta frames can carry an
// explicit false.
type ClientEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	Text       string `json:"text,omitempty"`
	IsFinal    *bool  `json:"is_final,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Error      string `json:"error,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

func notice(msgType, message string) ClientEvent {
	return ClientEvent{Type: msgType, Message: message}
}

func textEvent(msgType, text string, final bool) ClientEvent {
	return ClientEvent{Type: msgType, Text: text, IsFinal: &final}
}

func errorEvent(detail string) ClientEvent {
	return ClientEvent{Type: "error", Error: detail}
}
