package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/eventbus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage 推送给客户端的消息
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ServeChanges 数据变更推送
// GET /ws/changes
//
// 连接建立后先发送 {"type":"connected"}，此后每次成功写入推送
// {"type":"write","data":WriteEvent}。客户端可发送 {"type":"ping"}，服务端回复 pong。
func (h *Handler) ServeChanges(w http.ResponseWriter, r *http.Request) {
	if h.changes == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "change feed disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.WSConnectionOpened()
	defer h.metrics.WSConnectionClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 先订阅再发送 connected，客户端收到 connected 后的写入不会丢失
	events, err := h.changes.SubscribeWrites(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Change feed subscribe failed")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
		return
	}

	pongs := make(chan struct{}, 1)
	go h.readPump(conn, cancel, pongs)
	h.writePump(ctx, conn, events, pongs)
}

// readPump 读取客户端消息
//
// 只处理 ping；pong 由 writePump 发送，保证同一时刻只有一个写者。
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc, pongs chan<- struct{}) {
	defer cancel()
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
		h.metrics.RecordWSMessage("in", "message")

		var req wsMessage
		if json.Unmarshal(msg, &req) == nil && req.Type == "ping" {
			select {
			case pongs <- struct{}{}:
			default:
			}
		}
	}
}

// writePump 向客户端推送写入事件
//
// 每 30s 发送 ping 保持连接；事件通道关闭（Hub 关闭）时发送关闭帧并退出。
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan *eventbus.WriteEvent, pongs <-chan struct{}) {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	if !h.send(conn, wsMessage{Type: "connected"}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-pongs:
			if !h.send(conn, wsMessage{Type: "pong"}) {
				return
			}
		case event, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if !h.send(conn, wsMessage{Type: "write", Data: event}) {
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg wsMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).Debug("WebSocket write failed", "type", msg.Type)
		return false
	}
	h.metrics.RecordWSMessage("out", msg.Type)
	return true
}
