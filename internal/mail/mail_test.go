package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithDelay(func() time.Duration { return 0 }))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", h.HandleSend)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleSend(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"sent", `{"to":"ana@example.com","subject":"Hi","body":"x"}`, http.StatusOK},
		{"bad address", `{"to":"ana","subject":"Hi","body":"x"}`, http.StatusBadRequest},
		{"missing subject", `{"to":"ana@example.com","body":"x"}`, http.StatusBadRequest},
		{"not json", `to=ana`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/send", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var receipt Receipt
			if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if receipt.Status != "sent" || receipt.MessageID == "" {
				t.Errorf("unexpected receipt %+v", receipt)
			}
		})
	}
}

func TestClientSend(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL+"/", srv.Client())

	if err := client.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	err := client.Send(context.Background(), Message{To: "nobody", Subject: "Hi"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}
