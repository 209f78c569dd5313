package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"realtime-translation-relay/internal/language"
	"realtime-translation-relay/internal/models"
	"realtime-translation-relay/internal/service/translator"
	"realtime-translation-relay/internal/store"
)

const historyDefaultLimit = 50

type handlers struct {
	deps Deps
	log  zerolog.Logger
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	InputText  string `json:"input_text"`
	OutputText string `json:"output_text"`
	TargetLang string `json:"target_lang"`
	ID         string `json:"id,omitempty"`
}

// translateText translates one piece of text and records it in the
// caller's history when storage is configured.
func (h *handlers) translateText(w http.ResponseWriter, r *http.Request) {
	claims, token, err := h.deps.Verifier.FromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.deps.Translator.Translate(r.Context(), req.Text, req.TargetLang)
	if err != nil {
		switch {
		case errors.Is(err, translator.ErrEmptyText):
			writeError(w, http.StatusBadRequest, "text is required")
		case errors.Is(err, translator.ErrUnsupportedLanguage):
			writeError(w, http.StatusBadRequest, "unsupported target language: "+req.TargetLang)
		default:
			h.log.Error().Err(err).Msg("Text translation failed")
			writeError(w, http.StatusBadGateway, "translation failed")
		}
		return
	}

	resp := translateResponse{
		InputText:  req.Text,
		OutputText: result,
		TargetLang: req.TargetLang,
	}
	if h.deps.Store != nil {
		saved, err := h.deps.Store.SaveTranslation(claims.UserID(), req.Text, result, "auto", req.TargetLang, "text", token)
		if err != nil && !errors.Is(err, store.ErrNotConfigured) {
			h.log.Error().Err(err).Msg("Failed to save text translation")
		} else if saved != nil {
			resp.ID = saved.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// listLanguages returns the supported target languages. No auth: the
// catalog is static and public.
func (h *handlers) listLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": language.All()})
}

func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	claims, token, err := h.deps.Verifier.FromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if h.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage not configured")
		return
	}

	limit := queryInt(r, "limit", historyDefaultLimit)
	offset := queryInt(r, "offset", 0)

	items, err := h.deps.Store.ListTranslations(claims.UserID(), token, limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "history storage not configured")
			return
		}
		h.log.Error().Err(err).Msg("Failed to list translation history")
		writeError(w, http.StatusBadGateway, "failed to load history")
		return
	}
	if items == nil {
		items = []models.Translation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"translations": items})
}

func (h *handlers) deleteHistory(w http.ResponseWriter, r *http.Request) {
	claims, token, err := h.deps.Verifier.FromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if h.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage not configured")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "translation id is required")
		return
	}

	deleted, err := h.deps.Store.DeleteTranslation(id, claims.UserID(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "history storage not configured")
			return
		}
		h.log.Error().Err(err).Msg("Failed to delete translation")
		writeError(w, http.StatusBadGateway, "failed to delete translation")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "translation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
