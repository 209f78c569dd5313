package store

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"realtime-translation-relay/internal/models"
)

func TestSaveTranslation(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey string
	var gotBody models.Translation

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write(append(append([]byte("["), raw...), ']'))
	}))
	defer srv.Close()

	s := New(srv.URL, "anon-key")

	rec, err := s.SaveTranslation("user-1", "Hello world!", "Hola mundo!", "auto", "es", "realtime_audio", "user-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/rest/v1/translations" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer user-token" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
	if gotAPIKey != "anon-key" {
		t.Errorf("unexpected apikey header: %s", gotAPIKey)
	}
	if gotBody.SourceLang != nil {
		t.Error("expected 'auto' source language to be stored as null")
	}
	if gotBody.ID == "" {
		t.Error("expected a generated record id")
	}
	if rec.InputText != "Hello world!" || rec.OutputText != "Hola mundo!" {
		t.Errorf("unexpected record returned: %+v", rec)
	}
	if rec.Modality != "realtime_audio" {
		t.Errorf("unexpected modality: %s", rec.Modality)
	}
}

func TestSaveTranslation_ExplicitSourceLang(t *testing.T) {
	var gotBody models.Translation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	s := New(srv.URL, "anon-key")
	if _, err := s.SaveTranslation("user-1", "hi", "salut", "en", "fr", "text", "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.SourceLang == nil || *gotBody.SourceLang != "en" {
		t.Errorf("expected source lang 'en', got %v", gotBody.SourceLang)
	}
}

func TestSaveTranslation_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(srv.URL, "anon-key")
	if _, err := s.SaveTranslation("user-1", "a", "b", "auto", "es", "text", "tok"); err == nil {
		t.Error("expected error on non-2xx response")
	}
}

func TestSaveTranslation_NotConfigured(t *testing.T) {
	s := New("", "")
	if _, err := s.SaveTranslation("u", "a", "b", "auto", "es", "text", "tok"); err != ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestListTranslations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_id") != "eq.user-1" {
			t.Errorf("unexpected user filter: %s", q.Get("user_id"))
		}
		if q.Get("limit") != "25" || q.Get("offset") != "50" {
			t.Errorf("unexpected paging: limit=%s offset=%s", q.Get("limit"), q.Get("offset"))
		}
		w.Write([]byte(`[{"id":"t-1","user_id":"user-1","input_text":"hi","output_text":"hola","target_lang":"es","modality":"text","created_at":"2026-01-01T00:00:00Z","source_lang":null}]`))
	}))
	defer srv.Close()

	s := New(srv.URL, "anon-key")
	rows, err := s.ListTranslations("user-1", "tok", 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "t-1" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestDeleteTranslation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		deleted  bool
	}{
		{"found", `[{"id":"t-1"}]`, true},
		{"not found", `[]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("unexpected method: %s", r.Method)
				}
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			s := New(srv.URL, "anon-key")
			deleted, err := s.DeleteTranslation("t-1", "user-1", "tok")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if deleted != tt.deleted {
				t.Errorf("expected deleted=%v, got %v", tt.deleted, deleted)
			}
		})
	}
}
