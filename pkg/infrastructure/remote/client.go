// Package remote talks to the personalization backend and the public
// catalog over HTTP/JSON. Every failure is returned as *model.AuthError or
// *model.NetworkError; nothing is retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"storefront/pkg/domain/model"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	endpoint
}

var _ model.SyncClient = (*Client)(nil)

func NewClient(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	e, err := newEndpoint(cfg, logger.WithField("component", "remote"))
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: e}, nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	const op = "login"
	body := map[string]string{"username": username, "password": password}
	status, resp, err := c.do(ctx, op, http.MethodPost, "/login", nil, body)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	return rejection(op, status, resp, http.StatusUnauthorized)
}

func (c *Client) Register(ctx context.Context, form model.RegistrationForm) error {
	const op = "register"
	body := map[string]model.RegistrationForm{"formData": form}
	status, resp, err := c.do(ctx, op, http.MethodPost, "/register", nil, body)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return rejection(op, status, resp, http.StatusBadRequest)
}

func (c *Client) FetchProfile(ctx context.Context, username string) (model.Profile, error) {
	const op = "fetchProfile"
	status, resp, err := c.do(ctx, op, http.MethodGet, "/user", url.Values{"username": {username}}, nil)
	if err != nil {
		return model.Profile{}, err
	}
	if status != http.StatusOK {
		return model.Profile{}, rejection(op, status, resp, 0)
	}
	var profile model.Profile
	if err := json.Unmarshal(resp, &profile); err != nil {
		return model.Profile{}, &model.NetworkError{Op: op, Status: status, Err: errors.Wrap(err, "malformed profile")}
	}
	if profile.Username == "" {
		profile.Username = username
	}
	return profile, nil
}

func (c *Client) FetchPreferences(ctx context.Context, username string) ([]model.CatalogItem, error) {
	return c.fetchItems(ctx, "fetchPreferences", "/preference", url.Values{"username": {username}})
}

func (c *Client) FetchWishlist(ctx context.Context, username string) ([]model.CatalogItem, error) {
	return c.fetchItems(ctx, "fetchWishlist", "/wishlist", url.Values{"username": {username}})
}

// ToggleWishlist succeeds only on an explicit 200.
func (c *Client) ToggleWishlist(ctx context.Context, username string, itemID model.ItemID, action model.WishlistAction) error {
	const op = "toggleWishlist"
	body := struct {
		CoffeeID model.ItemID         `json:"coffeeId"`
		Username string               `json:"username"`
		Action   model.WishlistAction `json:"action"`
	}{itemID, username, action}
	status, resp, err := c.do(ctx, op, http.MethodPost, "/wishlist", nil, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return rejection(op, status, resp, 0)
	}
	return nil
}

func (c *Client) fetchItems(ctx context.Context, op, path string, query url.Values) ([]model.CatalogItem, error) {
	status, resp, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejection(op, status, resp, 0)
	}
	return c.decodeItems(op, status, resp)
}

type endpoint struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

func newEndpoint(cfg Config, logger logrus.FieldLogger) (endpoint, error) {
	if cfg.BaseURL == "" {
		return endpoint{}, errors.New("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return endpoint{}, errors.Wrap(err, "invalid base URL")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return endpoint{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// do returns a *model.NetworkError for anything that prevents reading a
// complete response.
func (e endpoint) do(ctx context.Context, op, method, path string, query url.Values, body interface{}) (int, []byte, error) {
	target := e.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &model.NetworkError{Op: op, Err: errors.Wrap(err, "encode request")}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, &model.NetworkError{Op: op, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.WithError(err).WithField("op", op).Warn("request failed")
		return 0, nil, &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, &model.NetworkError{Op: op, Status: resp.StatusCode, Err: errors.Wrap(err, "read response")}
	}

	e.logger.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")
	return resp.StatusCode, data, nil
}

// decodeItems drops items that fail validation instead of failing the batch.
func (e endpoint) decodeItems(op string, status int, body []byte) ([]model.CatalogItem, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, &model.NetworkError{Op: op, Status: status, Err: errors.New("response is not a JSON array")}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.NetworkError{Op: op, Status: status, Err: errors.Wrap(err, "decode items")}
	}

	items := make([]model.CatalogItem, 0, len(raw))
	for i, r := range raw {
		var item model.CatalogItem
		if err := json.Unmarshal(r, &item); err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{"op": op, "index": i}).Warn("skipping undecodable item")
			continue
		}
		if err := item.Validate(); err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{"op": op, "index": i}).Warn("skipping invalid item")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// rejection maps a non-success status. rejectStatus is the status the
// backend uses for well-formed rejections of op, or 0 if it has none.
func rejection(op string, status int, body []byte, rejectStatus int) error {
	message := serverMessage(body)
	if rejectStatus != 0 && status == rejectStatus {
		return &model.AuthError{Op: op, Status: status, Message: message}
	}
	if message == "" {
		return &model.NetworkError{Op: op, Status: status}
	}
	return &model.NetworkError{Op: op, Status: status, Err: errors.New(message)}
}

func serverMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	result := gjson.GetManyBytes(body, "error", "message")
	for _, r := range result {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
