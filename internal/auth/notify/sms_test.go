package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/misedainspect/itpnotify/internal/auth/notify"
	"github.com/stretchr/testify/require"
)

func TestSendVerificationSMS(t *testing.T) {
	var got struct {
		Phone            string `json:"phone"`
		ShortTextMessage string `json:"shortTextMessage"`
		SendAsShort      bool   `json:"sendAsShort"`
	}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := notify.NewSMSAdvertSenderWithClient(srv.URL, "api-token", srv.Client())
	err := sender.SendVerificationSMS(context.Background(), "0712345678", "Ion", "482913")
	require.NoError(t, err)

	require.Equal(t, "api-token", gotAuth)
	require.Equal(t, "0712345678", got.Phone)
	require.Contains(t, got.ShortTextMessage, "482913")
	require.Contains(t, got.ShortTextMessage, "Ion")
	require.True(t, got.SendAsShort)
}

func TestSendVerificationSMSGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := notify.NewSMSAdvertSenderWithClient(srv.URL, "bad-token", srv.Client())
	err := sender.SendVerificationSMS(context.Background(), "0712345678", "Ion", "482913")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
