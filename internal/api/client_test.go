package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

type fakeTokens struct {
	token    string
	failures atomic.Int32
}

func (f *fakeTokens) Token() string { return f.token }
func (f *fakeTokens) AuthFailure()  { f.failures.Add(1); f.token = "" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.User{ID: 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeTokens{token: "tok-123"}, discardLogger())
	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.Page[models.Report]{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, discardLogger())
	if _, err := c.PublicReports(context.Background(), ReportFilter{}); err != nil {
		t.Fatalf("PublicReports: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("unauthenticated client sent Authorization %q", gotAuth)
	}
}

func TestAuthFailureDestroysSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	c := NewClient(srv.URL, tokens, discardLogger())
	_, err := c.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthFailure(err) {
		t.Fatalf("IsAuthFailure(%v) = false", err)
	}
	if got := tokens.failures.Load(); got != 1 {
		t.Fatalf("AuthFailure called %d times, want 1", got)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "token expired" {
		t.Fatalf("status error = %+v", se)
	}
}

func TestForbiddenAlsoDestroysSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok"}
	c := NewClient(srv.URL, tokens, discardLogger())
	if _, err := c.CurrentUser(context.Background()); !IsAuthFailure(err) {
		t.Fatalf("err = %v, want auth failure", err)
	}
	if tokens.failures.Load() != 1 {
		t.Fatal("session not destroyed on 403")
	}
}

func TestNotFoundHelper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeTokens{token: "tok"}, discardLogger())
	_, err := c.UnreadCount(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false", err)
	}
	if IsAuthFailure(err) {
		t.Fatal("404 must not look like an auth failure")
	}
}

func TestQueryParameters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(models.Page[models.Report]{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeTokens{token: "tok"}, discardLogger())
	_, err := c.Reports(context.Background(), ReportFilter{
		Category: models.CategoryStreetLighting,
		Status:   models.StatusSubmitted,
		Page:     2,
		Size:     25,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "category=STREET_LIGHTING&page=2&size=25&status=SUBMITTED"
	if gotQuery != want {
		t.Fatalf("query = %q, want %q", gotQuery, want)
	}
}

func TestChatUsersAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":1,"username":"a"},{"id":2,"username":"b"}]`},
		{"wrapped", `{"users":[{"id":1,"username":"a"},{"id":2,"username":"b"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, &fakeTokens{token: "tok"}, discardLogger())
			users, err := c.ChatUsers(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(users) != 2 || users[0].Username != "a" {
				t.Fatalf("users = %+v", users)
			}
		})
	}
}

func TestPlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeTokens{token: "tok"}, discardLogger())
	_, err := c.Report(context.Background(), 1)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T", err)
	}
	if se.Code != http.StatusInternalServerError || se.Message != "database unavailable" {
		t.Fatalf("status error = %+v", se)
	}
}
