package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tenantgate/pkg/problems"
)

func TestRequestIDEchoesInbound(t *testing.T) {
	var got string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != "abc-123" || rec.Header().Get("X-Request-Id") != "abc-123" {
		t.Errorf("request id = %q header = %q, want abc-123", got, rec.Header().Get("X-Request-Id"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || got != rec.Header().Get("X-Request-Id") {
		t.Errorf("generated id = %q header = %q", got, rec.Header().Get("X-Request-Id"))
	}
}

func TestRecoverWritesProblem(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	log := zap.New(core).Sugar()
	h := Recover(log, &problems.Renderer{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if logs.FilterMessage("panic").Len() != 1 {
		t.Errorf("panic not logged: %v", logs.All())
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if logs.FilterMessage("incoming request").FilterLevelExact(zapcore.InfoLevel).Len() != 1 {
		t.Error("incoming request not logged at info")
	}
	done := logs.FilterMessage("request completed").All()
	if len(done) != 1 {
		t.Fatalf("request completed entries = %d, want 1", len(done))
	}
	if status := done[0].ContextMap()["status"]; status != int64(http.StatusTeapot) {
		t.Errorf("status field = %v (%T), want 418", status, status)
	}
}
