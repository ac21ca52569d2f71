package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"unoroom/internal/rooms"
)

// Client posts finished-game results to the external verification
// service. Requests carry a static signing header.
type Client struct {
	url  string
	sign string
	http *http.Client
}

func NewClient(url, sign string) *Client {
	return &Client{
		url:  url,
		sign: sign,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Report submits the result. Any transport error or non-2xx/3xx status
// is a failure; callers decide what to do with the room.
func (c *Client) Report(ctx context.Context, res rooms.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("sign", c.sign)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting result: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("verification service returned %s", resp.Status)
	}
	return nil
}
