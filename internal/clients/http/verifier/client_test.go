package verifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerify_GenuineVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/classify", r.URL.Path)

		var req struct {
			Image string `json:"image"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		require.NoError(t, err)
		require.Equal(t, []byte("note"), decoded)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"denomination": 20, "isGenuine": true, "confidence": 0.97}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.True(t, verdict.IsGenuine)
	require.Equal(t, "20.00", verdict.Denomination.StringFixed(2))
	require.InDelta(t, 0.97, verdict.Confidence, 1e-9)
}

func TestVerify_RejectedVerdictCarriesReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isGenuine": false, "reason": "low confidence"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
	require.Equal(t, "low confidence", verdict.Reason)
}

func TestVerify_ServerErrorBecomesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
	require.Contains(t, verdict.Reason, "500")
}

func TestVerify_UnreachableServiceBecomesRejection(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
	require.Contains(t, verdict.Reason, "unreachable")
}

func TestVerify_TimeoutBecomesRejection(t *testing.T) {
	// The handler must outlive the client timeout but still return on its
	// own, otherwise server.Close blocks on it forever.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
		w.Write([]byte(`{"denomination": 20, "isGenuine": true, "confidence": 0.97}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
	require.Contains(t, verdict.Reason, "unreachable")
}

func TestVerify_UnparseableResponseBecomesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
	require.Contains(t, verdict.Reason, "unparseable")
}

func TestVerify_GenuineWithoutDenominationRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isGenuine": true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	verdict := client.Verify(context.Background(), []byte("note"))
	require.False(t, verdict.IsGenuine)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("   ")
	require.Error(t, err)
}
