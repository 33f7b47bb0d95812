package port

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketOpener_SendsBasicAuthHeader(t *testing.T) {
	var gotAuth string
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	opener := WebSocketOpener(WebSocketConfig{URL: wsURL, Username: "tech", Password: "hunter2"})

	conn, err := opener()
	require.NoError(t, err)
	defer conn.Close()

	assert.True(t, strings.HasPrefix(gotAuth, "Basic "))
}

func TestWebSocketOpener_NoAuthWithoutUsername(t *testing.T) {
	var gotAuth string
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	opener := WebSocketOpener(WebSocketConfig{URL: wsURL})

	conn, err := opener()
	require.NoError(t, err)
	defer conn.Close()

	assert.Empty(t, gotAuth)
}
