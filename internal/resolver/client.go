package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/semtetteh/semsterapp/internal/authcore"
)

// Client is the session manager's HTTP client for the resolver
// service. Every failure collapses to the generic credential error;
// the caller learns nothing a wrong password would not also reveal.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) ResolveEmail(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", authcore.Wrap(authcore.KindInternal, "resolver request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", authcore.Wrap(authcore.KindInternal, "resolver request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", authcore.Wrap(authcore.KindInternal, "resolver unreachable", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", authcore.ErrInvalidLogin
	}

	var out struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil || out.Email == "" {
		return "", authcore.ErrInvalidLogin
	}

	return out.Email, nil
}
