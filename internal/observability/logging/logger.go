// Package logging provides contextual zerolog loggers for the service.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithSession returns a logger with relay session context.
func WithSession(sessionId, userId string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionId).
		Str("userId", userId).
		Logger()
}

// WithUpstream returns a logger with upstream connection context.
func WithUpstream(sessionId string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionId).
		Str("component", "upstream").
		Logger()
}
