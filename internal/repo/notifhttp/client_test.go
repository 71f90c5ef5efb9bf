package notifhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchForActor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("actor_id"); got != "7" {
			t.Fatalf("unexpected actor_id: %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":         "n1",
				"message":    "Ticket #12 assigné",
				"category":   "ASSIGNED",
				"created_at": "2026-08-31T10:00:00Z",
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	notifications, err := client.FetchForActor(context.Background(), 7)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(notifications) != 1 || notifications[0].ID != "n1" {
		t.Fatalf("unexpected notifications: %+v", notifications)
	}
}

func TestFetchForActorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.FetchForActor(context.Background(), 7); err == nil {
		t.Fatalf("expected error on 502")
	}
}
