package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSend(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	hook := NewWebhook(srv.URL, true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, hook.Send(context.Background(), "점심 투표 시작"))
	assert.Equal(t, "점심 투표 시작", received["text"])
}

func TestWebhookDisabledIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	hook := NewWebhook(srv.URL, false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, hook.Send(context.Background(), "ignored"))
	assert.False(t, called)

	hook = NewWebhook("", true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, hook.Send(context.Background(), "ignored"))
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	hook := NewWebhook(srv.URL, true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, hook.Send(context.Background(), "boom"))
}
