package messaging

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

func TestChatID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "012-345 6789", want: "60123456789@s.whatsapp.net"},
		{in: "+60 12 345 6789", want: "60123456789@s.whatsapp.net"},
		{in: "123", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ChatID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSendPostsToBot(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	bot := NewBotClient(srv.URL+"/", time.Second)
	require.NoError(t, bot.Send(context.Background(), "0123456789", "Hai"))
	assert.Equal(t, "60123456789@s.whatsapp.net", got.To)
	assert.Equal(t, "Hai", got.Text)
}

func TestSendReportsBotFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"ok":false,"error":"socket not ready"}`))
	}))
	defer srv.Close()

	err := NewBotClient(srv.URL, time.Second).Send(context.Background(), "0123456789", "Hai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket not ready")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"service":"bot","connected":true}`))
	}))
	defer srv.Close()

	ok, err := NewBotClient(srv.URL, time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
