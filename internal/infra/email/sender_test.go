package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sendgrid/sendgrid-go"
)

func testClient(url string) *sendgrid.Client {
	req := sendgrid.GetRequest("SG.test", "/v3/mail/send", url)
	req.Method = "POST"
	return &sendgrid.Client{Request: req}
}

func TestSendgridSend(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" || r.Header.Get("Authorization") != "Bearer SG.test" {
			t.Errorf("unexpected request %s %q", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := newSendgrid(testClient(srv.URL), "noreply@example.com")
	if err := s.Send(context.Background(), VerificationMessage("https://app.example.com", "ana@example.com", "tok")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if body["subject"] != "Verify your email" {
		t.Fatalf("subject = %v", body["subject"])
	}
	from, _ := body["from"].(map[string]any)
	if from["email"] != "noreply@example.com" {
		t.Fatalf("from = %v", body["from"])
	}
}

func TestSendgridSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := newSendgrid(testClient(srv.URL), "noreply@example.com")
	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "s", Text: "t"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewWithoutKeyLogs(t *testing.T) {
	if _, ok := New("", "noreply@example.com").(LogSender); !ok {
		t.Fatal("expected LogSender without API key")
	}
	if _, ok := New("SG.key", "noreply@example.com").(*SendgridSender); !ok {
		t.Fatal("expected SendgridSender with API key")
	}
}

func TestMessages(t *testing.T) {
	m := PasswordResetMessage("https://app.example.com", "ana@example.com", "a b")
	if !strings.Contains(m.Text, "https://app.example.com/reset-password?token=a+b") {
		t.Fatalf("reset link missing: %q", m.Text)
	}
	v := VerificationMessage("https://app.example.com", "ana@example.com", "xyz")
	if v.To != "ana@example.com" || !strings.Contains(v.HTML, "/verify-email?token=xyz") {
		t.Fatalf("unexpected verification message: %+v", v)
	}
}
