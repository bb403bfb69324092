package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() models.User {
	return models.User{ID: 7, Username: "amina", Role: models.RoleCitizen}
}

func TestLoginLogout(t *testing.T) {
	s := NewStore(nil, discardLogger())
	if s.Current() != nil {
		t.Fatal("fresh store should be logged out")
	}
	s.Login(testUser(), "tok-1")
	sess := s.Current()
	if sess == nil || sess.User.ID != 7 || sess.Token != "tok-1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if s.Token() != "tok-1" {
		t.Fatalf("Token = %q", s.Token())
	}
	s.Logout()
	if s.Current() != nil {
		t.Fatal("session should be nil after logout")
	}
	if s.Token() != "" {
		t.Fatal("token should be empty after logout")
	}
}

func TestAuthFailureIdempotent(t *testing.T) {
	s := NewStore(nil, discardLogger())
	s.Login(testUser(), "tok")

	var mu sync.Mutex
	var transitions int
	s.OnChange(func(sess *Session) {
		if sess == nil {
			mu.Lock()
			transitions++
			mu.Unlock()
		}
	})

	// Concurrent failing requests all report auth failure.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AuthFailure()
		}()
	}
	wg.Wait()

	if s.Current() != nil {
		t.Fatal("session should be cleared")
	}
	mu.Lock()
	defer mu.Unlock()
	if transitions != 1 {
		t.Fatalf("logout notified %d times, want exactly once", transitions)
	}
}

func TestListenerSeesLogin(t *testing.T) {
	s := NewStore(nil, discardLogger())
	var got *Session
	s.OnChange(func(sess *Session) { got = sess })
	s.Login(testUser(), "tok")
	if got == nil || got.User.Username != "amina" {
		t.Fatalf("listener saw %+v", got)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(fs, discardLogger())
	s.Login(testUser(), unexpiredToken(t))

	// A new store restores the session from disk.
	s2 := NewStore(fs, discardLogger())
	sess, err := s2.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess == nil || sess.User.ID != 7 {
		t.Fatalf("restored %+v", sess)
	}

	s2.Logout()
	s3 := NewStore(fs, discardLogger())
	sess, err = s3.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatal("logout should clear the persisted session")
	}
}

func TestRestoreDiscardsExpiredToken(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(&Session{User: testUser(), Token: tokenWithExp(t, time.Now().Add(-time.Hour))}); err != nil {
		t.Fatal(err)
	}
	s := NewStore(fs, discardLogger())
	sess, err := s.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatal("expired token should not restore a session")
	}
	if _, statErr := os.Stat(filepath.Join(dir, sessionFilename)); !os.IsNotExist(statErr) {
		t.Fatal("expired session file should be removed")
	}
}

func TestRestoreToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, sessionFilename), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(fs, discardLogger())
	sess, err := s.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess != nil {
		t.Fatal("corrupt file should restore nothing")
	}
}

// unexpiredToken builds an unsigned JWT that expires far in the future.
// The store only inspects the exp claim, so a fake signature is fine.
func unexpiredToken(t *testing.T) string {
	return tokenWithExp(t, time.Now().Add(24*time.Hour))
}

func tokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"sub": "7", "exp": exp.Unix()})
	if err != nil {
		t.Fatal(err)
	}
	payload := base64.RawURLEncoding.EncodeToString(claims)
	return fmt.Sprintf("%s.%s.sig", header, payload)
}
