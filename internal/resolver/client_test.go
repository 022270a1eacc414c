package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtetteh/semsterapp/internal/authcore"
)

func TestClientResolvesEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada", req["username"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"email": "ada@school.edu"})
	}))
	defer srv.Close()

	email, err := NewClient(srv.URL).ResolveEmail(context.Background(), "ada", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ada@school.edu", email)
}

func TestClientCollapsesNon200ToGenericError(t *testing.T) {
	for _, status := range []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusInternalServerError,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "whatever"})
		}))

		_, err := NewClient(srv.URL).ResolveEmail(context.Background(), "ada", "pw")
		require.ErrorIs(t, err, authcore.ErrInvalidLogin, "status %d", status)
		srv.Close()
	}
}

func TestClientRejectsMalformedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ResolveEmail(context.Background(), "ada", "pw")
	require.ErrorIs(t, err, authcore.ErrInvalidLogin)
}

func TestClientUnreachableIsInternal(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1").ResolveEmail(context.Background(), "ada", "pw")
	require.Error(t, err)
	assert.Equal(t, authcore.KindInternal, authcore.KindOf(err))
}
