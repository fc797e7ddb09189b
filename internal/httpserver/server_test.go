package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/timesince/internal/sms"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type replierFunc func(string) ([]byte, error)

func (f replierFunc) Reply(command string) ([]byte, error) { return f(command) }

func newTestServer(t *testing.T, replier Replier) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer("", replier, logger)
	srv.startTime = time.Now()
	return srv.routes()
}

func postSMS(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSMSConnectReply(t *testing.T) {
	r := newTestServer(t, sms.Responder{SiteURL: "https://ts.example"})

	form := url.Values{"From": {"+15550001111"}, "Body": {"  CONNECT "}}
	w := postSMS(r, form.Encode())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("content type = %q, want text/xml", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing xml declaration: %q", body)
	}
	if !strings.Contains(body, "https://ts.example") {
		t.Errorf("reply missing site url: %q", body)
	}
}

func TestSMSGenericReply(t *testing.T) {
	r := newTestServer(t, sms.Responder{})

	w := postSMS(r, url.Values{"Body": {"hello"}}.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `Text "connect" to get started`) {
		t.Errorf("unexpected reply: %q", w.Body.String())
	}
}

func TestSMSMissingBodyGetsGenericReply(t *testing.T) {
	r := newTestServer(t, sms.Responder{})

	w := postSMS(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestSMSMalformedFormIs500(t *testing.T) {
	r := newTestServer(t, sms.Responder{})

	w := postSMS(r, "Body=%zz")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Body.String() != "Internal Server Error" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
}

func TestSMSReplyFailureIs500(t *testing.T) {
	r := newTestServer(t, replierFunc(func(string) ([]byte, error) {
		return nil, errors.New("template broke")
	}))

	w := postSMS(r, url.Values{"Body": {"connect"}}.Encode())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestSMSPanicIsRecovered(t *testing.T) {
	r := newTestServer(t, replierFunc(func(string) ([]byte, error) {
		panic("boom")
	}))

	w := postSMS(r, url.Values{"Body": {"connect"}}.Encode())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Body.String() != "Internal Server Error" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSMSWrongMethod(t *testing.T) {
	r := newTestServer(t, sms.Responder{})

	req := httptest.NewRequest(http.MethodGet, "/api/sms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("GET /api/sms status = %d, want 405 or 404", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestServer(t, sms.Responder{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestStartStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer("127.0.0.1:0", sms.Responder{}, logger)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
