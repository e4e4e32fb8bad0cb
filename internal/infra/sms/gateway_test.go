package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSMSSuccess(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"queued":1}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "secret-token", "REKRUTACJA")
	res, err := client.SendSMS(context.Background(), "500600700", "Test otwarty")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Response, `"success":true`)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, []string{"+48500600700"}, gotForm["phone[]"])
	assert.Equal(t, []string{"Test otwarty"}, gotForm["text"])
	assert.Equal(t, []string{"REKRUTACJA"}, gotForm["sender"])
	assert.Equal(t, []string{"true"}, gotForm["details"])
}

func TestSendSMSNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "500600700", "msg")

	require.NoError(t, err)
	assert.False(t, res.Success, "a non-2xx status is never a success, whatever the body says")
	assert.Contains(t, res.Response, `"success":true`)
}

func TestSendSMSFalsySuccessFieldIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":false,"error":"blocked number"}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "500600700", "msg")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Response, "blocked number")
}

func TestSendSMSUnparsableBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "500600700", "msg")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "OK", res.Response)
}

func TestSendSMSInvalidPhoneSkipsHTTPCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "12345", "msg")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid phone number", res.Response)
	assert.False(t, called)
}

func TestSendSMSResponseIsTruncatedForAudit(t *testing.T) {
	long := strings.Repeat("x", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(long))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "500600700", "msg")

	require.NoError(t, err)
	assert.Len(t, res.Response, responseLimit)
}

func TestSendSMSConnectionErrorIsFailureNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewGatewayClient(srv.URL, "t", "S")
	res, err := client.SendSMS(context.Background(), "500600700", "msg")

	require.NoError(t, err, "transport failures surface through the result, not the error")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Response)
}
