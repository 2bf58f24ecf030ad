package widget

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"portfolio-backend/internal/store"
)

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("storage disabled") }
func (failingKV) Set(string, string) error          { return errors.New("storage disabled") }

func newKV(t *testing.T) *store.FileKV {
	t.Helper()
	return store.NewFileKV(filepath.Join(t.TempDir(), "chat_state.json"))
}

func TestVisibility_SurvivesReload(t *testing.T) {
	kv := newKV(t)

	w := New(kv, nil)
	w.Restore()
	if w.Visible() {
		t.Fatal("expected hidden by default")
	}
	w.Show()

	reloaded := New(kv, nil)
	reloaded.Restore()
	if !reloaded.Visible() {
		t.Fatal("expected visible after reload")
	}
	reloaded.Hide()

	again := New(kv, nil)
	again.Restore()
	if again.Visible() {
		t.Fatal("expected hidden after reload")
	}
	if v, _, _ := kv.Get(VisibleKey); v != "0" {
		t.Errorf("expected stored flag \"0\", got %q", v)
	}
}

func TestVisibility_OnlyOneMeansVisible(t *testing.T) {
	for _, stored := range []string{"0", "", "true", "yes"} {
		kv := newKV(t)
		if err := kv.Set(VisibleKey, stored); err != nil {
			t.Fatal(err)
		}
		if NewVisibility(kv).GetChatVisible() {
			t.Errorf("stored %q should read as hidden", stored)
		}
	}
}

func TestVisibility_StorageFailureIsIgnored(t *testing.T) {
	w := New(failingKV{}, nil)
	w.Restore()
	if w.Visible() {
		t.Fatal("unreadable storage should leave the panel hidden")
	}
	w.Toggle()
	if !w.Visible() {
		t.Fatal("toggle should still work without persistence")
	}
	w.Toggle()
	if w.Visible() {
		t.Fatal("second toggle should hide")
	}
}

func TestShow_FocusesAndSwallowsFocusError(t *testing.T) {
	w := New(newKV(t), nil)
	var focused int
	w.OnFocus(func() error {
		focused++
		return errors.New("no input to focus")
	})

	w.Show()
	w.Hide()
	if focused != 1 {
		t.Errorf("expected focus on show only, got %d calls", focused)
	}
	if w.Visible() {
		t.Error("expected hidden after Hide")
	}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func assertExchange(t *testing.T, w *Widget, userText, botText string) {
	t.Helper()
	msgs := w.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0] != (Message{Text: userText, Role: RoleUser}) {
		t.Errorf("unexpected user message %+v", msgs[0])
	}
	if msgs[1] != (Message{Text: botText, Role: RoleBot}) {
		t.Errorf("unexpected bot message %+v", msgs[1])
	}
}

func TestSubmit_Reply(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"reply":"I build **models**."}`))
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	if !w.Submit(context.Background(), "  what do you do?  ") {
		t.Fatal("expected a request")
	}
	assertExchange(t, w, "what do you do?", "I build **models**.")
	if gotBody != `{"message":"what do you do?"}` {
		t.Errorf("unexpected request body %s", gotBody)
	}
}

func TestSubmit_MissingReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	w.Submit(context.Background(), "hi")
	assertExchange(t, w, "hi", NoReply)
}

func TestSubmit_HTTPErrorUsesServerField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"no message provided"}`))
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	w.Submit(context.Background(), "hi")
	assertExchange(t, w, "hi", "Assistant error: no message provided")
}

func TestSubmit_HTTPErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>upstream down</html>`))
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	w.Submit(context.Background(), "hi")
	assertExchange(t, w, "hi", "Assistant error: Bad Gateway")
}

func TestSubmit_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := New(newKV(t), NewClient(url, ""))
	w.Submit(context.Background(), "hi")
	assertExchange(t, w, "hi", Unreachable)
}

func TestSubmit_BlankInputMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	for _, in := range []string{"", "   ", "\n\t"} {
		if w.Submit(context.Background(), in) {
			t.Errorf("%q: expected no request", in)
		}
	}
	if len(w.Messages()) != 0 {
		t.Errorf("expected no messages, got %+v", w.Messages())
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network calls, got %d", hits.Load())
	}
}

func TestBegin_LogsUserBeforeExchange(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer srv.Close()

	w := New(newKV(t), NewClient(srv.URL, ""))
	text, ok := w.Begin("question")
	if !ok {
		t.Fatal("expected Begin to accept input")
	}
	done := make(chan Message)
	go func() { done <- w.Exchange(context.Background(), text) }()

	if msgs := w.Messages(); len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Errorf("expected only the user message while in flight, got %+v", msgs)
	}
	close(release)
	w.Append(<-done)
	assertExchange(t, w, "question", "ok")
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

func TestClient_SendsBearerTokenAndKeepsCookies(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "portfolio_session", Value: "s_1", Path: "/"})
		} else if c, err := r.Cookie("portfolio_session"); err != nil || c.Value != "s_1" {
			t.Errorf("expected session cookie on second call, got %v %v", c, err)
		}
		_, _ = w.Write([]byte(`{"reply":"hi"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	for i := 0; i < 2; i++ {
		if _, err := c.Send(context.Background(), "x"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"assistant error","details":"boom"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Send(context.Background(), "x")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != 500 || se.Status != "Internal Server Error" || se.Message != "assistant error" {
		t.Errorf("unexpected status error %+v", se)
	}
}

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

type renderFunc func(string) (string, error)

func (f renderFunc) Render(s string) (string, error) { return f(s) }

func TestRender_FallsBackToRawText(t *testing.T) {
	m := Message{Text: "**raw**", Role: RoleBot}
	if got := Render(nil, m); got != "**raw**" {
		t.Errorf("nil renderer: got %q", got)
	}
	failing := renderFunc(func(string) (string, error) { return "", errors.New("bad markdown") })
	if got := Render(failing, m); got != "**raw**" {
		t.Errorf("failing renderer: got %q", got)
	}
}

func TestRender_Markdown(t *testing.T) {
	r, err := NewRenderer(60, "notty")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	got := Render(r, Message{Text: "Skills:\n\n- Python\n- Go", Role: RoleBot})
	for _, want := range []string{"Skills:", "Python", "Go"} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered output missing %q: %q", want, got)
		}
	}
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Errorf("expected surrounding newlines trimmed: %q", got)
	}
}

func TestClient_HasNoTimeout(t *testing.T) {
	c := NewClient("", "tok")
	if c.httpClient.Timeout != 0 {
		t.Errorf("expected no client timeout, got %v", c.httpClient.Timeout)
	}
	if c.endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %q", c.endpoint)
	}
	if c.httpClient.Jar == nil {
		t.Error("expected a cookie jar")
	}
}
