package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHTTPClientGenerate(t *testing.T) {
	var got GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output":{"safetyScore":80,"issues":[]}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key", 5*time.Second, zap.NewNop())
	raw, err := client.Generate(context.Background(), &GenerateRequest{
		Capability:  "prescription_safety_score",
		Instruction: "Evaluate this.",
		Media:       []string{"data:image/png;base64,Zm9v"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if out["safetyScore"] != float64(80) {
		t.Fatalf("unexpected output: %v", out)
	}
	if got.Capability != "prescription_safety_score" || len(got.Media) != 1 {
		t.Fatalf("unexpected wire request: %+v", got)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", 5*time.Second, zap.NewNop())
	_, err := client.Generate(context.Background(), &GenerateRequest{Capability: "x", Instruction: "y"})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestHTTPClientEmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", 5*time.Second, zap.NewNop())
	_, err := client.Generate(context.Background(), &GenerateRequest{Capability: "x", Instruction: "y"})
	if err == nil {
		t.Fatal("expected error for empty output")
	}
}
