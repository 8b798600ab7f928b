package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"voicecampaign-platform/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestStartBatchCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/batch-calls", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req StartBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "camp-1", req.CampaignID)
		require.Len(t, req.Recipients, 2)

		json.NewEncoder(w).Encode(BatchCall{
			ID: "batch-1", CampaignID: req.CampaignID, Status: "queued",
			TotalCalls: len(req.Recipients),
		})
	})

	bc, err := c.StartBatchCall(context.Background(), StartBatchRequest{
		CampaignID: "camp-1",
		AgentID:    "agent-1",
		FromNumber: "+14155550100",
		Recipients: []Recipient{
			{ContactID: "ct-1", Phone: "+14155552671"},
			{ContactID: "ct-2", Phone: "+14155552672"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "batch-1", bc.ID)
	require.Equal(t, 2, bc.TotalCalls)
}

func TestGetBatchCallNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetBatchCall(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpstreamErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"message": "rate limited"})
	})

	_, err := c.StopBatchCall(context.Background(), "batch-1")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	require.Equal(t, "rate limited", upstream.Message)
}

func TestUnreachableProviderIsUnavailable(t *testing.T) {
	c := NewClient(config.ProviderConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k"})

	err := c.HealthCheck(context.Background())
	require.True(t, errors.Is(err, ErrUnavailable))
}
