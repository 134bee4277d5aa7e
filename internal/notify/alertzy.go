package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sweeney/chronodesk/internal/model"
)

// Sender delivers one push message to a combined account key.
type Sender interface {
	Send(ctx context.Context, accountKey, title, message string) error
}

// Alertzy posts messages to the Alertzy push service.
type Alertzy struct {
	endpoint string
	client   *http.Client
}

// NewAlertzy creates a sender for endpoint with a per-request timeout.
func NewAlertzy(endpoint string, timeout time.Duration) *Alertzy {
	return &Alertzy{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Send posts a form with accountKey, title and message. Any non-2xx
// response is an error.
func (a *Alertzy) Send(ctx context.Context, accountKey, title, message string) error {
	form := url.Values{}
	form.Set("accountKey", accountKey)
	form.Set("title", title)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build alertzy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alertzy: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alertzy: unexpected status %s", resp.Status)
	}
	return nil
}

// CombineKeys joins the valid keys of the accounts at indices with "_".
// Out-of-range indices and empty keys are skipped; duplicates are sent once.
func CombineKeys(accounts []model.PushAccount, indices []int) string {
	var keys []string
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(accounts) || seen[idx] {
			continue
		}
		seen[idx] = true
		if k := accounts[idx].Key; k != "" {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, "_")
}
