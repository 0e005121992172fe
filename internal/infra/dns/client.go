// Package dns is a thin call surface over the Cloudflare v4 DNS API,
// scoped to the single zone the tunnels' hostnames live in.
package dns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

const applicationJSON = "application/json"

// Client talks to the Cloudflare DNS API for one zone.
type Client struct {
	baseURL  string
	zoneID   string
	apiEmail string
	apiKey   string
	http     *retryablehttp.Client
}

func NewClient(baseURL, zoneID, apiEmail, apiKey string) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	// Single attempt per call; lifecycle steps that can tolerate DNS
	// failure treat it as best-effort instead of retrying.
	httpClient.RetryMax = 0

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		zoneID:   zoneID,
		apiEmail: apiEmail,
		apiKey:   apiKey,
		http:     httpClient,
	}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// apiResponse is the Cloudflare envelope. Success is determined by the
// explicit success flag, not merely by HTTP status.
type apiResponse[T any] struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  T          `json:"result"`
}

func (r apiResponse[T]) err() error {
	if r.Success {
		return nil
	}
	if len(r.Errors) == 0 {
		return fmt.Errorf("cloudflare api reported failure without details")
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("cloudflare api: %s", strings.Join(msgs, "; "))
}

// FindRecordID looks up the record whose name equals hostname exactly and
// returns its identifier. When duplicates exist the first match wins; this
// is a known limitation, not a tie-break rule. Returns
// errors.ErrRecordNotFound when nothing matches.
func (c *Client) FindRecordID(ctx context.Context, hostname string) (string, error) {
	query := url.Values{}
	query.Set("name", hostname)
	path := fmt.Sprintf("/zones/%s/dns_records?%s", url.PathEscape(c.zoneID), query.Encode())

	var resp apiResponse[[]domain.DNSRecord]
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return "", domerr.DNSError{Op: "lookup", Err: err}
	}
	if err := resp.err(); err != nil {
		return "", domerr.DNSError{Op: "lookup", Err: err}
	}

	for _, rec := range resp.Result {
		if rec.Name == hostname {
			return rec.ID, nil
		}
	}
	return "", domerr.ErrRecordNotFound
}

// DeleteRecord removes a record by its identifier.
func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	path := fmt.Sprintf("/zones/%s/dns_records/%s", url.PathEscape(c.zoneID), url.PathEscape(recordID))

	var resp apiResponse[json.RawMessage]
	if err := c.do(ctx, http.MethodDelete, path, &resp); err != nil {
		return domerr.DNSError{Op: "delete", Err: err}
	}
	if err := resp.err(); err != nil {
		return domerr.DNSError{Op: "delete", Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, v any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Auth-Email", c.apiEmail)
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("Accept", applicationJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
