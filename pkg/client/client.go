// Package client is a Go client for the portal ledger API. It owns token
// handling: no request is issued without a valid token, an expired token is
// refreshed once and the request replayed, and transport failures surface as
// NetworkError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which of a client's two ledgers a call addresses. Values match
// the URL spelling, not the storage enum.
type Kind string

const (
	KindExpenses     Kind = "expenses"
	KindCashReceipts Kind = "cash-receipts"
)

// CreateEntryRequest is the payload for adding an open-ledger entry. Amounts
// travel as decimal strings.
type CreateEntryRequest struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	BillURL     string          `json:"billURL,omitempty"`
}

// UpdateEntryRequest is a partial update; nil fields are left unchanged.
type UpdateEntryRequest struct {
	Date        *time.Time       `json:"date,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *string          `json:"status,omitempty"`
	BillURL     *string          `json:"billURL,omitempty"`
}

// Entry is one expense or cash-receipt row as returned by the backend.
type Entry struct {
	EntryID     string          `json:"entryID"`
	ClientID    string          `json:"clientID"`
	Kind        string          `json:"kind"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	BillURL     string          `json:"billURL,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OpenLedger is the current editable ledger plus derived totals.
type OpenLedger struct {
	Entries []Entry         `json:"entries"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

// Version is one frozen snapshot.
type Version struct {
	VersionID     string          `json:"versionID"`
	ClientID      string          `json:"clientID"`
	Kind          string          `json:"kind"`
	VersionNumber int             `json:"versionNumber"`
	BoundaryAt    time.Time       `json:"boundaryAt"`
	Entries       []Entry         `json:"entries"`
	Total         decimal.Decimal `json:"total"`
	EntryCount    int             `json:"entryCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// History is the ordered version history for one ledger.
type History struct {
	Versions []Version `json:"versions"`
}

// Summary aggregates the open ledger and the frozen history.
type Summary struct {
	ClientID       string          `json:"clientID"`
	Kind           string          `json:"kind"`
	VersionCount   int             `json:"versionCount"`
	LastBoundaryAt *time.Time      `json:"lastBoundaryAt,omitempty"`
	OpenTotal      decimal.Decimal `json:"openTotal"`
	OpenCount      int             `json:"openCount"`
	OpenAverage    decimal.Decimal `json:"openAverage"`
	HistoryTotal   decimal.Decimal `json:"historyTotal"`
	HistoryCount   int             `json:"historyCount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// Client talks to one portal backend on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	session *AuthSession
}

// New creates a Client. baseURL is the server root, without /api/v1.
func New(baseURL string, session *AuthSession) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

func (c *Client) ledgerURL(clientID string, kind Kind, suffix string) string {
	return fmt.Sprintf("%s/api/v1/clients/%s/ledgers/%s/%s", c.baseURL, clientID, kind, suffix)
}

// do issues one authenticated request. A 401 response triggers a single
// refresh-and-replay; a second 401 is returned to the caller.
func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	token, ok := c.session.GetToken()
	if !ok {
		refreshed, err := c.session.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("no valid token: %w", err)
		}
		token = refreshed
	}

	resp, err := c.send(ctx, method, url, body, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		token, err = c.session.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("token refresh failed: %w", err)
		}
		resp, err = c.send(ctx, method, url, body, token)
		if err != nil {
			return err
		}
	}

	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, url string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + url, Err: err}
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// CreateEntry adds an entry to the client's open ledger.
func (c *Client) CreateEntry(ctx context.Context, clientID string, kind Kind, req CreateEntryRequest) (*Entry, error) {
	var out Entry
	if err := c.do(ctx, http.MethodPost, c.ledgerURL(clientID, kind, "entries"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOpenLedger returns the editable entries and their derived totals.
func (c *Client) GetOpenLedger(ctx context.Context, clientID string, kind Kind) (*OpenLedger, error) {
	var out OpenLedger
	if err := c.do(ctx, http.MethodGet, c.ledgerURL(clientID, kind, "entries"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEntry applies a partial update to an open-ledger entry.
func (c *Client) UpdateEntry(ctx context.Context, clientID string, kind Kind, entryID string, req UpdateEntryRequest) (*Entry, error) {
	var out Entry
	if err := c.do(ctx, http.MethodPatch, c.ledgerURL(clientID, kind, "entries/"+entryID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEntry removes an open-ledger entry.
func (c *Client) DeleteEntry(ctx context.Context, clientID string, kind Kind, entryID string) error {
	return c.do(ctx, http.MethodDelete, c.ledgerURL(clientID, kind, "entries/"+entryID), nil, nil)
}

// CreateVersion freezes the open ledger into the next numbered version.
func (c *Client) CreateVersion(ctx context.Context, clientID string, kind Kind) (*Version, error) {
	var out Version
	if err := c.do(ctx, http.MethodPost, c.ledgerURL(clientID, kind, "versions"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory returns the frozen versions, ascending by version number.
func (c *Client) GetHistory(ctx context.Context, clientID string, kind Kind) (*History, error) {
	var out History
	if err := c.do(ctx, http.MethodGet, c.ledgerURL(clientID, kind, "versions"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSummary returns the derived totals over the open ledger and history.
func (c *Client) GetSummary(ctx context.Context, clientID string, kind Kind) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, http.MethodGet, c.ledgerURL(clientID, kind, "summary"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
