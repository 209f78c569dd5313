package realtime

// Tracker accumulates one speech turn's transcript and translation as
// upstream events arrive. It is driven exclusively by the session's
// listener goroutine, so it needs no locking of its own.
type Tracker struct {
	// Transcript is the recognized source text for the current turn.
	Transcript string
	// Translation is the translated text, built either by incremental
	// delta appends or by whole-value replacement on a done event. A done
	// event always replaces; mixing the two styles within one turn would
	// duplicate content.
	Translation string
}

// Result describes what the session should do after applying one event.
type Result struct {
	// Events are the normalized frames to forward to the client, in order.
	Events []ClientEvent
	// Persist is set when a done event closed the turn with both a
	// transcript and a translation.
	Persist bool
	// SessionCreated is set on the upstream session.created event; the
	// session reacts by marking itself initialized and sending the session
	// configuration for the current target language.
	SessionCreated bool
	// ResponseFailed is set when the upstream reports a failed response.
	ResponseFailed bool
}

// handlers maps upstream event types to their effect. Tags missing from the
// map are ignored, which keeps the relay forward-compatible with new
// upstream event types.
var handlers = map[string]func(*Tracker, ServerEvent) Result{
	EventSessionCreated: func(t *Tracker, ev ServerEvent) Result {
		return Result{
			SessionCreated: true,
			Events:         []ClientEvent{notice("session_created", "Connected to OpenAI Realtime API")},
		}
	},
	EventSessionUpdated: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{notice("session_updated", "Session configuration updated")}}
	},
	EventInputAudioBufferCommitted: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{notice("audio_committed", "Audio buffer committed")}}
	},
	EventInputAudioBufferSpeechStarted: func(t *Tracker, ev ServerEvent) Result {
		t.Transcript = ""
		t.Translation = ""
		return Result{Events: []ClientEvent{notice("speech_started", "Speech detected")}}
	},
	EventInputAudioBufferSpeechStopped: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{notice("speech_stopped", "Speech ended")}}
	},
	EventInputTranscriptionCompleted: func(t *Tracker, ev ServerEvent) Result {
		t.Transcript = ev.Transcript
		return Result{Events: []ClientEvent{textEvent("input_transcription", ev.Transcript, true)}}
	},
	EventResponseCreated: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{notice("response_started", "Generating response")}}
	},
	EventResponseDone: func(t *Tracker, ev ServerEvent) Result {
		if ev.Response == nil {
			return Result{}
		}
		switch ev.Response.Status {
		case responseStatusCompleted:
			return Result{Events: []ClientEvent{notice("response_complete", "Translation complete")}}
		case responseStatusFailed:
			return Result{
				ResponseFailed: true,
				Events:         []ClientEvent{errorEvent("Response generation failed")},
			}
		}
		return Result{}
	},
	EventResponseAudioTranscriptDelta: func(t *Tracker, ev ServerEvent) Result {
		t.Translation += ev.Delta
		return Result{Events: []ClientEvent{textEvent("translation_delta", ev.Delta, false)}}
	},
	EventResponseAudioTranscriptDone: func(t *Tracker, ev ServerEvent) Result {
		t.Translation = ev.Transcript
		return Result{
			Persist: t.Transcript != "" && t.Translation != "",
			Events:  []ClientEvent{textEvent("translation", ev.Transcript, true)},
		}
	},
	EventResponseAudioDelta: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{{Type: "audio_delta", Audio: ev.Delta}}}
	},
	EventResponseAudioDone: func(t *Tracker, ev ServerEvent) Result {
		return Result{Events: []ClientEvent{notice("audio_complete", "Audio translation complete")}}
	},
	EventResponseTextDelta: func(t *Tracker, ev ServerEvent) Result {
		t.Translation += ev.Delta
		return Result{Events: []ClientEvent{textEvent("text_delta", ev.Delta, false)}}
	},
	EventResponseTextDone: func(t *Tracker, ev ServerEvent) Result {
		t.Translation = ev.Text
		return Result{
			Persist: t.Transcript != "" && t.Translation != "",
			Events:  []ClientEvent{textEvent("text_response", ev.Text, true)},
		}
	},
	EventError: func(t *Tracker, ev ServerEvent) Result {
		detail := "Unknown error"
		if ev.Error != nil {
			detail = ev.Error.Notification()
		}
		return Result{Events: []ClientEvent{errorEvent(detail)}}
	},
}

// Apply folds one upstream event into the turn state and returns the
// resulting actions. Unrecognized event types leave the state untouched and
// produce nothing.
func (t *Tracker) Apply(ev ServerEvent) Result {
	if h, ok := handlers[ev.Type]; ok {
		return h(t, ev)
	}
	return Result{}
}
