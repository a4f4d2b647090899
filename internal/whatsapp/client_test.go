package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsGatewayPayload(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"queued"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", "Market", "")
	require.NoError(t, client.Send(context.Background(), "0501234567", "مرحبا"))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, Message{
		Recipient: "0501234567",
		Message:   "مرحبا",
		Type:      "whatsapp",
		Lang:      "ar",
		SenderID:  "Market",
	}, got)
}

func TestSendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"gateway refuses", http.StatusOK, `{"success":false,"message":"invalid number"}`, "invalid number"},
		{"http failure", http.StatusUnauthorized, `{"success":false,"message":"bad token"}`, "status 401"},
		{"non json body", http.StatusBadGateway, `upstream down`, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, "t", "", "ar").Send(context.Background(), "1", "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
