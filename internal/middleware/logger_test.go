package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerEmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest("POST", "/api/images/wide", nil)
	req.Header.Set("X-Request-ID", "rid-log")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["method"] != "POST" {
		t.Fatalf("expected method POST, got %v", line["method"])
	}
	if line["path"] != "/api/images/wide" {
		t.Fatalf("expected path /api/images/wide, got %v", line["path"])
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", line["status"])
	}
	if line["request_id"] != "rid-log" {
		t.Fatalf("expected request_id rid-log, got %v", line["request_id"])
	}
	if line["message"] != "http request" {
		t.Fatalf("expected message, got %v", line["message"])
	}
}

func TestLoggerDefaultsStatusTo200(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["status"] != float64(200) {
		t.Fatalf("expected implicit 200, got %v", line["status"])
	}
}
