package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Status is the outcome shown under the form.
type Status string

const (
	StatusIdle    Status = ""
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	SuccessMessage = "Message sent successfully!"
	ErrorMessage   = "Failed to send message. Please try again."
)

// Result is what the form shows after a submission.
type Result struct {
	Status  Status
	Message string
	// Err keeps the underlying failure for logging; it is never shown.
	Err error
}

// Client submits forms to a contact endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// Submit posts f and maps every outcome to a Result. It never fails.
func (c *Client) Submit(ctx context.Context, f Form) Result {
	fail := func(err error) Result {
		return Result{Status: StatusError, Message: ErrorMessage, Err: err}
	}
	body, err := json.Marshal(f)
	if err != nil {
		return fail(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return fail(&ProviderError{Status: resp.StatusCode, Message: resp.Status})
	}
	return Result{Status: StatusSuccess, Message: SuccessMessage}
}
