package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ciao"}}]}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "test-key", time.Second)
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "google/gemini-2.5-flash",
		Messages: []GatewayMessage{{Role: RoleUser, Content: "ciao"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "google/gemini-2.5-flash", gotReq.Model)
	assert.Equal(t, "ciao", resp.Choices[0].Message.Content)
}

func TestGatewayClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrPaymentRequired},
		{http.StatusInternalServerError, ErrGateway},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client := NewGatewayClient(srv.URL, "test-key", time.Second)
		_, err := client.Complete(context.Background(), CompletionRequest{})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestGatewayClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "test-key", time.Second)
	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, ErrGateway)
}
