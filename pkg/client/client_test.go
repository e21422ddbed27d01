package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntrySendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/clients/c-1/ledgers/expenses/entries", r.URL.Path)

		var req CreateEntryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "150.50", req.Amount.String())

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Entry{
			EntryID:  "e-1",
			ClientID: "c-1",
			Kind:     "EXPENSE",
			Amount:   req.Amount,
		})
	}))
	defer server.Close()

	session := NewAuthSession("tok-1", nil, nil)
	c := New(server.URL, session)

	entry, err := c.CreateEntry(context.Background(), "c-1", KindExpenses, CreateEntryRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("150.50"),
		Description: "Paint and primer",
		Status:      "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, "e-1", entry.EntryID)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestExpiredTokenRefreshedAndReplayedOnce(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(OpenLedger{Count: 0})
	}))
	defer server.Close()

	var refreshes int32
	session := NewAuthSession("expired", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&refreshes, 1)
		return "fresh", nil
	}, nil)
	c := New(server.URL, session)

	ledger, err := c.GetOpenLedger(context.Background(), "c-1", KindCashReceipts)
	require.NoError(t, err)
	assert.Zero(t, ledger.Count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestSecondUnauthorizedSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}))
	defer server.Close()

	session := NewAuthSession("expired", func(ctx context.Context) (string, error) {
		return "still-bad", nil
	}, nil)
	c := New(server.URL, session)

	_, err := c.GetOpenLedger(context.Background(), "c-1", KindExpenses)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNoRequestWithoutToken(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(History{})
	}))
	defer server.Close()

	// Session starts empty; the client must refresh before the first request.
	session := NewAuthSession("", func(ctx context.Context) (string, error) {
		return "fresh", nil
	}, nil)
	c := New(server.URL, session)

	_, err := c.GetHistory(context.Background(), "c-1", KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestTransportFailureWrappedAsNetworkError(t *testing.T) {
	session := NewAuthSession("tok-1", nil, nil)
	// Nothing listens on this address.
	c := New("http://127.0.0.1:1", session)

	_, err := c.GetSummary(context.Background(), "c-1", KindExpenses)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Entry belongs to a frozen version and can no longer change"})
	}))
	defer server.Close()

	session := NewAuthSession("tok-1", nil, nil)
	c := New(server.URL, session)

	err := c.DeleteEntry(context.Background(), "c-1", KindExpenses, "e-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "frozen version")
}
