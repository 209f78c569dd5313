// Package store persists translation records through the Supabase REST API.
//
// Records live in the "translations" table and are always written with the
// end user's own access token so row-level security applies server-side.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"realtime-translation-relay/internal/models"
	"realtime-translation-relay/internal/observability/metrics"
)

var ErrNotConfigured = errors.New("supabase store not configured")

const requestTimeout = 10 * time.Second

// Store is a thin client for the Supabase PostgREST endpoint.
type Store struct {
	baseURL string
	anonKey string
	client  *fasthttp.Client
	metrics *metrics.Metrics
}

// New creates a Store for the given Supabase project URL and anon key.
func New(baseURL, anonKey string) *Store {
	return &Store{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &fasthttp.Client{},
		metrics: metrics.DefaultMetrics,
	}
}

// SaveTranslation inserts one translation record. A sourceLang of "auto" is
// stored as null, matching the history schema.
func (s *Store) SaveTranslation(userID, inputText, outputText, sourceLang, targetLang, modality, accessToken string) (*models.Translation, error) {
	if s.baseURL == "" || s.anonKey == "" {
		return nil, ErrNotConfigured
	}

	record := models.Translation{
		ID:         uuid.NewString(),
		UserID:     userID,
		InputText:  inputText,
		OutputText: outputText,
		TargetLang: targetLang,
		Modality:   modality,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if sourceLang != "" && sourceLang != "auto" {
		record.SourceLang = &sourceLang
	}

	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshaling translation record: %w", err)
	}

	var rows []models.Translation
	err = s.do(fasthttp.MethodPost, s.baseURL+"/rest/v1/translations", accessToken, body, &rows)
	s.metrics.RecordPersist(err)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &record, nil
	}
	return &rows[0], nil
}

// ListTranslations returns the user's history, newest first.
func (s *Store) ListTranslations(userID, accessToken string, limit, offset int) ([]models.Translation, error) {
	if s.baseURL == "" || s.anonKey == "" {
		return nil, ErrNotConfigured
	}

	uri := s.baseURL + "/rest/v1/translations?select=*&user_id=eq." + userID +
		"&order=created_at.desc&limit=" + strconv.Itoa(limit) +
		"&offset=" + strconv.Itoa(offset)

	var rows []models.Translation
	if err := s.do(fasthttp.MethodGet, uri, accessToken, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteTranslation removes one record if it belongs to the user. Returns
// false when nothing matched.
func (s *Store) DeleteTranslation(id, userID, accessToken string) (bool, error) {
	if s.baseURL == "" || s.anonKey == "" {
		return false, ErrNotConfigured
	}

	uri := s.baseURL + "/rest/v1/translations?id=eq." + id + "&user_id=eq." + userID

	var rows []models.Translation
	if err := s.do(fasthttp.MethodDelete, uri, accessToken, nil, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// do performs one PostgREST request authenticated with the user token and
// decodes the returned representation into out when non-nil.
func (s *Store) do(method, uri, accessToken string, body []byte, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Prefer", "return=representation")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := s.client.DoTimeout(req, resp, requestTimeout); err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("supabase returned status %d: %s", code, resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding supabase response: %w", err)
	}
	return nil
}
