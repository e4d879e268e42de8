package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatmodel "github.com/Subhajitincareer/sahayata-kiran-india/internal/model/chat"
	chatservice "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/chat"
)

// WebSocketHandler carries a live chat session over one socket: inbound user
// messages run the same pipeline as the REST endpoint, and every appended
// message, including delayed counselor and follow-up lines, is pushed out.
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes registers the websocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/chat/session/{sessionID}/ws", h.handleWebSocket)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type outgoingFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	updates, cancelWatch, err := h.chatSvc.Watch(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	defer cancelWatch()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// A single writer goroutine owns the connection's write side.
	outbound := make(chan outgoingFrame, 32)
	go h.writeLoop(ctx, conn, outbound)
	go h.forwardUpdates(ctx, sessionID, updates, outbound)

	h.send(outbound, outgoingFrame{
		Type:      "connected",
		SessionID: sessionID,
		Data: map[string]any{
			"mode":        session.Mode,
			"crisisLevel": session.CrisisLevel,
		},
		Timestamp: time.Now().Unix(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var frame inboundFrame
			if err := conn.ReadJSON(&frame); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			h.handleFrame(ctx, sessionID, outbound, &frame)
		}
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, sessionID string, outbound chan<- outgoingFrame, frame *inboundFrame) {
	switch frame.Type {
	case "message":
		result, err := h.chatSvc.SendMessage(ctx, sessionID, frame.Message)
		if err != nil {
			if errors.Is(err, chatservice.ErrSessionNotFound) {
				h.sendError(outbound, "session closed")
				return
			}
			h.sendError(outbound, err.Error())
			return
		}
		// Watchers already streamed the messages themselves; this frame
		// carries the detection verdict and recommended actions.
		h.send(outbound, outgoingFrame{
			Type:      "result",
			SessionID: sessionID,
			Data: map[string]any{
				"detection": result.Detection,
				"actions":   result.Actions,
				"session":   result.Session,
			},
			Timestamp: time.Now().Unix(),
		})
	case "connect_agent":
		if _, err := h.chatSvc.ConnectAgent(ctx, sessionID); err != nil {
			h.sendError(outbound, err.Error())
		}
	case "ping":
		h.send(outbound, outgoingFrame{Type: "pong", Timestamp: time.Now().Unix()})
	default:
		h.sendError(outbound, "unsupported frame type: "+frame.Type)
	}
}

// forwardUpdates pushes appended transcript messages to the client until the
// watch channel closes or the connection goes away.
func (h *WebSocketHandler) forwardUpdates(ctx context.Context, sessionID string, updates <-chan chatmodel.Message, outbound chan<- outgoingFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok {
				h.send(outbound, outgoingFrame{
					Type:      "session_ended",
					SessionID: sessionID,
					Timestamp: time.Now().Unix(),
				})
				return
			}
			h.send(outbound, outgoingFrame{
				Type:      "message",
				SessionID: sessionID,
				Data:      msg,
				Timestamp: time.Now().Unix(),
			})
		}
	}
}

func (h *WebSocketHandler) writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan outgoingFrame) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbound:
			if err := conn.WriteJSON(frame); err != nil {
				log.Printf("[websocket] write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) send(outbound chan<- outgoingFrame, frame outgoingFrame) {
	select {
	case outbound <- frame:
	default:
		// Slow client; drop rather than stall the session.
		if data, err := json.Marshal(frame); err == nil {
			log.Printf("[websocket] dropped frame: %s", data)
		}
	}
}

func (h *WebSocketHandler) sendError(outbound chan<- outgoingFrame, message string) {
	h.send(outbound, outgoingFrame{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}
