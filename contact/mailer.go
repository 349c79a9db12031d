package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
)

// DefaultEndpoint is the Resend send-email API.
const DefaultEndpoint = "https://api.resend.com/emails"

// Mailer delivers an email and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, e Email) (id string, err error)
}

// ProviderError is a rejection reported by the email provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("email provider: status %d: %s", e.Status, e.Message)
}

// HTTPMailer sends through a Resend-compatible JSON API.
type HTTPMailer struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func (m HTTPMailer) Send(ctx context.Context, e Email) (string, error) {
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr struct {
			Message string `json:"message"`
		}
		msg := string(raw)
		if json.Unmarshal(raw, &perr) == nil && perr.Message != "" {
			msg = perr.Message
		}
		return "", &ProviderError{Status: resp.StatusCode, Message: msg}
	}
	var ok struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &ok); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return ok.ID, nil
}

// LogMailer writes emails to a logger instead of sending them. It is the
// development fallback when no API key is configured.
type LogMailer struct {
	Logger *log.Logger
	n      atomic.Uint64
}

func (m *LogMailer) Send(_ context.Context, e Email) (string, error) {
	l := m.Logger
	if l == nil {
		l = log.Default()
	}
	id := fmt.Sprintf("log-%d", m.n.Add(1))
	l.Printf("contact: email %s to %v: %s\n%s", id, e.To, e.Subject, e.Text)
	return id, nil
}
