package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketDetectRequest is a text frame asking for detection of an
// encoded image. Binary frames carry the image bytes directly.
type WebSocketDetectRequest struct {
	ID    string `json:"id,omitempty"`
	Image []byte `json:"image"`
}

// WebSocketDetectResponse answers one request frame.
type WebSocketDetectResponse struct {
	Type       string         `json:"type"` // "result" or "error"
	RequestID  string         `json:"request_id"`
	Result     *qrcode.Report `json:"result,omitempty"`
	DurationMs float64        `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorType  string         `json:"error_type,omitempty"`
}

// WebSocketConnWriter is the write side of a websocket connection.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

var wsRequestSeq atomic.Uint64

func nextRequestID() string {
	return strconv.FormatUint(wsRequestSeq.Add(1), 10)
}

// detectWebSocketHandler upgrades the connection and answers every frame
// with one JSON result.
func (s *Server) detectWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(s.maxUploadBytes() * 2) // base64 text frames
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		s.handleWebSocketMessage(ctx, conn, messageType, data)
	}
}

// handleWebSocketMessage runs detection for one frame and writes the reply.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, messageType int, data []byte) {
	var req WebSocketDetectRequest
	switch messageType {
	case websocket.BinaryMessage:
		req.Image = data
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("failed to parse request: %v", err))
			return
		}
	default:
		return
	}
	if req.ID == "" {
		req.ID = nextRequestID()
	}
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, req.ID, "invalid_request", "no image data provided")
		return
	}

	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	timer := common.NewNamedTimer("websocket detect")
	res, err := s.detector.DetectContext(ctx, qrcode.BytesInput(req.Image))
	timer.Stop()
	if err != nil {
		s.sendWebSocketError(conn, req.ID, "processing_error", err.Error())
		return
	}
	observeDetection("websocket", res.Code().String(), timer.Duration().Seconds(), res.Len())

	report := res.Report()
	s.sendWebSocketResponse(conn, WebSocketDetectResponse{
		Type:       "result",
		RequestID:  req.ID,
		Result:     &report,
		DurationMs: timer.Milliseconds(),
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDetectResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketDetectResponse{
		Type:      "error",
		RequestID: requestID,
		Error:     message,
		ErrorType: errorType,
	})
}
