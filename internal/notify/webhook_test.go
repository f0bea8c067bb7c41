package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxadvisor/internal/domain"
)

func TestNotifyPostsPayload(t *testing.T) {
	var got domain.NotificationPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 0)
	payload := domain.NotificationPayload{
		Verdict:        domain.RegimeNew,
		Savings:        57200,
		Recommendation: "switch",
		Timestamp:      "2025-04-01T12:00:00Z",
	}
	require.NoError(t, n.Notify(context.Background(), payload))
	assert.Equal(t, payload, got)
}

func TestNotifyReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 0)
	err := n.Notify(context.Background(), domain.NotificationPayload{})
	assert.Error(t, err)
}
