package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/notify"
)

func testPayload() matching.Payload {
	return matching.Payload{
		Subject:         "Possible match for your lost item: Black Phone",
		Recipient:       "ana",
		MatchID:         7,
		Side:            model.SideLost,
		YourItemTitle:   "My phone",
		ItemTitle:       "black phone",
		Category:        "electronics",
		OccurredOn:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Score:           0.93,
		ScorePercentage: 93,
		Link:            "https://najdeno.example.edu/items/10/matches",
	}
}

func TestWebhookSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"abc123","event":"message"}`))
	}))
	defer srv.Close()

	n := notify.NewWebhook(srv.URL+"/", "", time.Second)
	id, err := n.Send(context.Background(), "Ana@example.edu", testPayload())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "abc123" {
		t.Errorf("expected message id abc123, got %q", id)
	}
	if got["topic"] != "najdeno-ana-example-edu" {
		t.Errorf("unexpected topic %v", got["topic"])
	}
	if got["email"] != "Ana@example.edu" {
		t.Errorf("expected email forwarded, got %v", got["email"])
	}
	if got["click"] != testPayload().Link {
		t.Errorf("expected click link, got %v", got["click"])
	}
	if msg, _ := got["message"].(string); !strings.Contains(msg, "93%") {
		t.Errorf("expected score in message body, got %q", msg)
	}
}

func TestWebhookSendKeyedTopic(t *testing.T) {
	const secret = "campus-topic-secret"
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	if _, err := notify.NewWebhook(srv.URL, secret, time.Second).Send(context.Background(), "Ana@example.edu", testPayload()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	topic, _ := got["topic"].(string)
	if topic != notify.Topic(secret, "ana@example.edu") {
		t.Errorf("expected keyed topic, got %q", topic)
	}
	if strings.Contains(topic, "ana") || strings.Contains(topic, "example") {
		t.Errorf("topic %q reveals the address", topic)
	}
}

func TestTopic(t *testing.T) {
	const secret = "campus-topic-secret"

	if got := notify.Topic("", "Ana@Example.edu"); got != "najdeno-ana-example-edu" {
		t.Errorf("unkeyed topic = %q", got)
	}

	keyed := notify.Topic(secret, "ana@example.edu")
	if !strings.HasPrefix(keyed, "najdeno-") || len(keyed) != len("najdeno-")+32 {
		t.Errorf("unexpected keyed topic %q", keyed)
	}
	if notify.Topic(secret, " ANA@example.edu ") != keyed {
		t.Error("expected keyed topic to ignore case and surrounding space")
	}
	if notify.Topic(secret, "bor@example.edu") == keyed {
		t.Error("expected different addresses to get different topics")
	}
	if notify.Topic("another-topic-secret", "ana@example.edu") == keyed {
		t.Error("expected different secrets to give different topics")
	}
}

func TestWebhookSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := notify.NewWebhook(srv.URL, "", time.Second).Send(context.Background(), "ana@example.edu", testPayload())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestWebhookSendHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := notify.NewWebhook(srv.URL, "", 5*time.Second).Send(ctx, "ana@example.edu", testPayload())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWebhookSendEmptyTarget(t *testing.T) {
	if _, err := notify.NewWebhook("http://127.0.0.1:1", "", time.Second).Send(context.Background(), " ", testPayload()); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestNewSelectsNotifier(t *testing.T) {
	if _, ok := notify.New(notify.Options{Enabled: false, WebhookURL: "http://x"}).(notify.Disabled); !ok {
		t.Error("expected Disabled when notifications are off")
	}
	if _, ok := notify.New(notify.Options{Enabled: true}).(*notify.Log); !ok {
		t.Error("expected Log notifier without webhook url")
	}
	if _, ok := notify.New(notify.Options{Enabled: true, WebhookURL: "http://x"}).(*notify.Webhook); !ok {
		t.Error("expected Webhook notifier with url")
	}
}

func TestDisabledSend(t *testing.T) {
	_, err := notify.Disabled{}.Send(context.Background(), "ana@example.edu", testPayload())
	if !errors.Is(err, notify.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestLogSend(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	id, err := n.Send(context.Background(), "ana@example.edu", testPayload())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected uuid message id, got %q", id)
	}
	if !strings.Contains(buf.String(), id) || !strings.Contains(buf.String(), "ana@example.edu") {
		t.Errorf("expected id and target logged, got %q", buf.String())
	}
}
