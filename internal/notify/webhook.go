package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/matching"
)

const userAgent = "najdeno/1.0"

var topicUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Webhook publishes notifications as ntfy JSON messages. Each recipient gets
// a topic derived from their address and the topic secret, and the address is
// forwarded as the ntfy email field.
type Webhook struct {
	endpoint    string
	topicSecret string
	client      *http.Client
}

// NewWebhook returns a Webhook posting to endpoint. timeout bounds each
// request on top of the caller's context.
func NewWebhook(endpoint, topicSecret string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		endpoint:    strings.TrimRight(endpoint, "/"),
		topicSecret: topicSecret,
		client:      &http.Client{Timeout: timeout},
	}
}

type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
	Email    string   `json:"email,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

type ntfyResponse struct {
	ID string `json:"id"`
}

// Topic returns the ntfy topic used for target. With a secret the topic is a
// keyed hash of the address and cannot be derived from the address alone.
// Without one it is the sanitized address, for private ntfy servers.
func Topic(secret, target string) string {
	normalized := strings.ToLower(strings.TrimSpace(target))
	if secret == "" {
		return "najdeno-" + strings.Trim(topicUnsafe.ReplaceAllString(normalized, "-"), "-")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(normalized))
	return "najdeno-" + hex.EncodeToString(mac.Sum(nil)[:16])
}

func (w *Webhook) Send(ctx context.Context, target string, p matching.Payload) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("send webhook notification: empty target")
	}

	msg := ntfyMessage{
		Topic:   Topic(w.topicSecret, target),
		Title:   p.Subject,
		Message: p.Body(),
		Tags:    []string{"najdeno", "match", string(p.Side)},
		Click:   p.Link,
	}
	if strings.Contains(target, "@") {
		msg.Email = target
	}
	if p.ScorePercentage >= 80 {
		msg.Priority = 4
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out ntfyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil && err != io.EOF {
		return "", fmt.Errorf("decode webhook response: %w", err)
	}
	return out.ID, nil
}
