package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbridge/internal/testutil"
)

// mockWebSocketConn records written messages.
type mockWebSocketConn struct {
	sentMessages [][]byte
}

func (m *mockWebSocketConn) WriteMessage(_ int, data []byte) error {
	m.sentMessages = append(m.sentMessages, data)
	return nil
}

func (m *mockWebSocketConn) last(t *testing.T) WebSocketDetectResponse {
	t.Helper()
	require.NotEmpty(t, m.sentMessages)
	var resp WebSocketDetectResponse
	require.NoError(t, json.Unmarshal(m.sentMessages[len(m.sentMessages)-1], &resp))
	return resp
}

func TestServer_HandleWebSocketMessage(t *testing.T) {
	s := newFixtureServer(t, helloFixture(), testConfig())
	ctx := context.Background()

	t.Run("binary frame", func(t *testing.T) {
		conn := &mockWebSocketConn{}
		s.handleWebSocketMessage(ctx, conn, websocket.BinaryMessage, []byte("image"))

		resp := conn.last(t)
		assert.Equal(t, "result", resp.Type)
		assert.NotEmpty(t, resp.RequestID)
		require.NotNil(t, resp.Result)
		assert.True(t, resp.Result.OK)
		assert.Equal(t, "hello", resp.Result.Payloads[0].Text)
	})

	t.Run("text frame keeps request id", func(t *testing.T) {
		conn := &mockWebSocketConn{}
		msg, err := json.Marshal(WebSocketDetectRequest{ID: "req-7", Image: []byte("image")})
		require.NoError(t, err)
		s.handleWebSocketMessage(ctx, conn, websocket.TextMessage, msg)

		resp := conn.last(t)
		assert.Equal(t, "result", resp.Type)
		assert.Equal(t, "req-7", resp.RequestID)
	})

	t.Run("invalid json", func(t *testing.T) {
		conn := &mockWebSocketConn{}
		s.handleWebSocketMessage(ctx, conn, websocket.TextMessage, []byte("{"))

		resp := conn.last(t)
		assert.Equal(t, "error", resp.Type)
		assert.Equal(t, "invalid_request", resp.ErrorType)
		assert.Nil(t, resp.Result)
	})

	t.Run("empty image", func(t *testing.T) {
		conn := &mockWebSocketConn{}
		s.handleWebSocketMessage(ctx, conn, websocket.TextMessage, []byte(`{"id":"x"}`))

		resp := conn.last(t)
		assert.Equal(t, "error", resp.Type)
		assert.Equal(t, "x", resp.RequestID)
		assert.Contains(t, resp.Error, "no image data")
	})

	t.Run("cancelled context", func(t *testing.T) {
		conn := &mockWebSocketConn{}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		s.handleWebSocketMessage(cancelled, conn, websocket.BinaryMessage, []byte("image"))

		resp := conn.last(t)
		assert.Equal(t, "processing_error", resp.ErrorType)
	})
}

func TestServer_WebSocketEndToEnd(t *testing.T) {
	s := newEngineServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	for _, text := range []string{"first frame", "second frame"} {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, testutil.QRPNG(t, text, 300)))

		var got WebSocketDetectResponse
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "result", got.Type)
		require.NotNil(t, got.Result)
		require.Len(t, got.Result.Payloads, 1)
		assert.Equal(t, text, got.Result.Payloads[0].Text)
	}
}
