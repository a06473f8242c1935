// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseGuess(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantTitle   string
		wantAuthors string
		wantYear    string
		wantErr     bool
	}{
		{
			"plain json",
			`{"title": "A Study of Things", "authors": "Jane Doe, John Smith", "year": "2019"}`,
			"A Study of Things", "Jane Doe, John Smith", "2019", false,
		},
		{
			"markdown fenced",
			"```json\n{\"title\": \"A Study of Things\", \"authors\": \"Jane Doe\", \"year\": \"2019\"}\n```",
			"A Study of Things", "Jane Doe", "2019", false,
		},
		{
			"surrounding prose",
			`Here is the extracted metadata: {"title": "A Study of Things", "authors": "", "year": ""} as requested.`,
			"A Study of Things", "", "", false,
		},
		{
			"numeric year",
			`{"title": "A Study of Things", "authors": "Jane Doe", "year": 2019}`,
			"A Study of Things", "Jane Doe", "2019", false,
		},
		{
			"truncated reply",
			`{"title": "A Study of Things", "authors": "Jane Doe"`,
			"A Study of Things", "Jane Doe", "", false,
		},
		{"no json at all", "I could not find a title.", "", "", "", true},
		{"empty guess", `{"title": "", "authors": "", "year": ""}`, "", "", "", true},
		{"malformed json", `{"title": [not json}`, "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGuess(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGuess() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Title != tt.wantTitle || got.Authors != tt.wantAuthors || got.Year != tt.wantYear {
				t.Errorf("parseGuess() = %+v, want (%q, %q, %q)", got, tt.wantTitle, tt.wantAuthors, tt.wantYear)
			}
		})
	}
}

func TestChatBackendExtract(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant",
			"content": "{\"title\": \"A Study of Things\", \"authors\": \"Jane Doe\", \"year\": \"2019\"}"}}]}`))
	}))
	defer srv.Close()

	b := &ChatBackend{Endpoint: srv.URL, Model: "local-model", APIKey: "sk_test"}
	got, err := b.Extract(context.Background(), "<Title>A Study of Things</Title>\nJane Doe")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if gotAuth != "Bearer sk_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "local-model" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "<Title>A Study of Things</Title>") {
		t.Error("prompt does not carry the annotated text")
	}
	if got.Title != "A Study of Things" || got.Year != "2019" {
		t.Errorf("Extract() = %+v", got)
	}
}

func TestChatBackendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := &ChatBackend{Endpoint: srv.URL}
	if _, err := b.Extract(context.Background(), "some text"); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

func TestChatBackendEmptyInput(t *testing.T) {
	b := &ChatBackend{Endpoint: "http://127.0.0.1:1"}
	if _, err := b.Extract(context.Background(), "   \n  "); err == nil {
		t.Fatal("expected error for blank input without any request")
	}
}

func TestChatBackendNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	b := &ChatBackend{Endpoint: srv.URL}
	if _, err := b.Extract(context.Background(), "some text"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
