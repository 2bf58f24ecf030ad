package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"portfolio-backend/internal/mail"
	"portfolio-backend/internal/types"
)

// ---------------------------------------------------------------------------
// Fake mailer
// ---------------------------------------------------------------------------

type fakeMailer struct {
	sendFunc func(ctx context.Context, m mail.Message) error
	calls    []mail.Message
}

func (f *fakeMailer) Send(ctx context.Context, m mail.Message) error {
	f.calls = append(f.calls, m)
	if f.sendFunc != nil {
		return f.sendFunc(ctx, m)
	}
	return nil
}

type harness struct {
	handler   *Handler
	mailer    *fakeMailer
	factories int
	keys      []string
}

func newHarness(key string) *harness {
	h := &harness{mailer: &fakeMailer{}}
	h.handler = NewHandler("Portfolio Contact <onboarding@resend.dev>", "owner@example.com",
		func() string { return key },
		func(apiKey string) (mail.Mailer, error) {
			h.factories++
			h.keys = append(h.keys, apiKey)
			return h.mailer, nil
		})
	return h
}

const fullBody = `{"name":"Ada","email":"ada@example.com","phone":"555-0100","reason":"Hiring","message":"Let's talk"}`

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRelay_NonPostIsRejectedWithoutSending(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			h := newHarness("key")
			req := httptest.NewRequest(method, "/api/send-email", strings.NewReader(fullBody))
			rec := httptest.NewRecorder()
			h.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected 405, got %d", rec.Code)
			}
			var resp map[string]string
			_ = json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] != "Method not allowed" {
				t.Errorf("unexpected error body %v", resp)
			}
			if h.factories != 0 || len(h.mailer.calls) != 0 {
				t.Errorf("provider must not be touched, factories=%d calls=%d", h.factories, len(h.mailer.calls))
			}
		})
	}
}

func TestRelay_PostSendsOnceWithAllFields(t *testing.T) {
	h := newHarness("re_secret")
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(fullBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp)
	}
	if len(h.mailer.calls) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(h.mailer.calls))
	}
	if h.keys[0] != "re_secret" {
		t.Errorf("expected api key from environment getter, got %q", h.keys[0])
	}

	sent := h.mailer.calls[0]
	if !strings.Contains(sent.Subject, "Hiring") {
		t.Errorf("subject %q does not contain reason", sent.Subject)
	}
	for _, v := range []string{"Ada", "ada@example.com", "555-0100", "Hiring", "Let's talk"} {
		if !strings.Contains(sent.HTMLBody, v) {
			t.Errorf("body missing %q", v)
		}
	}
	if len(sent.To) != 1 || sent.To[0] != "owner@example.com" {
		t.Errorf("unexpected recipients %v", sent.To)
	}
	if sent.From != "Portfolio Contact <onboarding@resend.dev>" {
		t.Errorf("unexpected sender %q", sent.From)
	}
}

func TestRelay_ProviderFailureEchoesMessage(t *testing.T) {
	h := newHarness("key")
	h.mailer.sendFunc = func(context.Context, mail.Message) error {
		return errors.New("API key is invalid")
	}
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(fullBody))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "API key is invalid" {
		t.Errorf("expected provider message verbatim, got %q", resp["error"])
	}
}

func TestRelay_SMTPFailureEchoesUnderlyingMessage(t *testing.T) {
	h := newHarness("")
	h.mailer.sendFunc = func(context.Context, mail.Message) error {
		return mail.ErrSend{Provider: "gomail/smtp", Err: errors.New("dial tcp: connection refused")}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(fullBody))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "dial tcp: connection refused" {
		t.Errorf("unexpected error %q", resp["error"])
	}
}

func TestRelay_MissingFieldsAreNotRejected(t *testing.T) {
	h := newHarness("key")
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(`{"name":"Only Name"}`))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(h.mailer.calls) != 1 {
		t.Fatalf("expected one send, got %d", len(h.mailer.calls))
	}
	if h.mailer.calls[0].Subject != "New Contact Message: " {
		t.Errorf("unexpected subject %q", h.mailer.calls[0].Subject)
	}
}

func TestRelay_NonStringFieldsAreKept(t *testing.T) {
	h := newHarness("key")
	body := `{"name":"Ada","email":"ada@example.com","phone":5550100,"reason":"Hiring","message":null}`
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(h.mailer.calls) != 1 {
		t.Fatalf("expected one send, got %d", len(h.mailer.calls))
	}
	sent := h.mailer.calls[0]
	if sent.Subject != "New Contact Message: Hiring" {
		t.Errorf("unexpected subject %q", sent.Subject)
	}
	for _, v := range []string{"Ada", "ada@example.com", "5550100"} {
		if !strings.Contains(sent.HTMLBody, v) {
			t.Errorf("body missing %q", v)
		}
	}
	if strings.Contains(sent.HTMLBody, "<nil>") {
		t.Error("null field should render empty")
	}
}

func TestRelay_InvalidJSONStillSends(t *testing.T) {
	h := newHarness("key")
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(h.mailer.calls) != 1 {
		t.Errorf("expected one send, got %d", len(h.mailer.calls))
	}
}

func TestRelay_FormBody(t *testing.T) {
	h := newHarness("key")
	form := url.Values{"name": {"Grace"}, "reason": {"Speaking"}, "message": {"Conference"}}
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sent := h.mailer.calls[0]
	if sent.Subject != "New Contact Message: Speaking" {
		t.Errorf("unexpected subject %q", sent.Subject)
	}
	if !strings.Contains(sent.HTMLBody, "Grace") {
		t.Error("expected form name in body")
	}
}

func TestRelay_FactoryErrorIs500(t *testing.T) {
	h := NewHandler("from@example.com", "to@example.com", func() string { return "" },
		func(string) (mail.Mailer, error) { return nil, mail.ErrUnknownProvider{Name: "x"} })
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(fullBody))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestBuildEmail_InterpolatesVerbatim(t *testing.T) {
	msg := BuildEmail("f", "t", types.ContactSubmission{Reason: "r", Message: "<b>bold</b>"})
	if !strings.Contains(msg.HTMLBody, "<b>bold</b>") {
		t.Error("expected raw markup to be carried through unchanged")
	}
}
