package sheetsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"disabled", Config{}, true},
		{"https without auth", Config{URL: "https://sheets.example.com/api"}, true},
		{"with auth", Config{URL: "http://localhost:9000/rows", Username: "u", Password: "p"}, true},
		{"relative", Config{URL: "/rows"}, false},
		{"ftp", Config{URL: "ftp://example.com/rows"}, false},
		{"username only", Config{URL: "https://example.com", Username: "u"}, false},
		{"credentials without url", Config{Username: "u", Password: "p"}, false},
		{"negative timeout", Config{URL: "https://example.com", Timeout: -time.Second}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPushSendsUpsertWithBasicAuth(t *testing.T) {
	var got pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sheet", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Username: "sheet", Password: "secret"})
	require.NoError(t, err)

	rows := []domain.SheetRow{{
		Key:          RowKey("2024-03-01", "cus-1"),
		Date:         "2024-03-01",
		CustomerID:   "cus-1",
		CustomerName: "A",
		Items:        "Milk x 2",
		TotalAmount:  decimal.NewFromInt(100),
		AmountPaid:   decimal.NewFromInt(40),
		Balance:      decimal.NewFromInt(60),
	}}
	require.NoError(t, client.Push(context.Background(), rows))

	assert.Equal(t, "upsert", got.Action)
	assert.Equal(t, "key", got.KeyField)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "2024-03-01|cus-1", got.Rows[0].Key)
}

func TestPushClassifiesFailures(t *testing.T) {
	cases := []struct {
		status int
		kind   string
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusMethodNotAllowed, KindMethod},
		{http.StatusUnprocessableEntity, KindRejected},
		{http.StatusBadGateway, KindRemote},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		client, err := NewClient(Config{URL: srv.URL})
		require.NoError(t, err)

		err = client.Push(context.Background(), nil)
		srv.Close()

		var syncErr *SyncError
		require.True(t, errors.As(err, &syncErr), "status %d", tc.status)
		assert.Equal(t, tc.status, syncErr.StatusCode)
		assert.Equal(t, tc.kind, syncErr.Kind)
		assert.NotEmpty(t, syncErr.Hint)
	}
}

func TestPushWrapsNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{URL: url, Timeout: time.Second})
	require.NoError(t, err)

	err = client.Push(context.Background(), nil)
	var syncErr *SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, KindNetwork, syncErr.Kind)
	assert.Zero(t, syncErr.StatusCode)
}
