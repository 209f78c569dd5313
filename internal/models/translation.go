// Package models defines the data structures for translation records and events.
package models

// Translation is one stored translation record, as persisted in the
// "translations" table.
type Translation struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	InputText  string  `json:"input_text"`
	OutputText string  `json:"output_text"`
	SourceLang *string `json:"source_lang"`
	TargetLang string  `json:"target_lang"`
	Modality   string  `json:"modality"`
	CreatedAt  string  `json:"created_at"`
}

// TurnCompleted is the event published when a realtime speech turn finishes
// with both a transcript and a translation.
type TurnCompleted struct {
	EventType   string `json:"eventType"`
	SessionID   string `json:"sessionId"`
	UserID      string `json:"userId"`
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
	TargetLang  string `json:"targetLang"`
	Modality    string `json:"modality"`
	Timestamp   int64  `json:"timestamp"`
}
