package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-reviews/internal/shared/eventbus"
)

type wsEnvelope struct {
	Type string               `json:"type"`
	Data *eventbus.WriteEvent `json:"data"`
}

func dialChanges(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/changes"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	var hello wsEnvelope
	readJSON(t, conn, &hello)
	require.Equal(t, "connected", hello.Type)
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

func TestChanges_PushesWrites(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialChanges(t, srv)

	resp, err := http.Post(srv.URL+"/api/restaurants", "application/json", strings.NewReader(restaurantBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg wsEnvelope
	readJSON(t, conn, &msg)
	assert.Equal(t, "write", msg.Type)
	require.NotNil(t, msg.Data)
	assert.Equal(t, "restaurants", msg.Data.Collection)
	assert.Equal(t, eventbus.OpCreate, msg.Data.Op)
	assert.Equal(t, "1", msg.Data.ID)
	assert.False(t, msg.Data.Timestamp.IsZero())

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/restaurants/1", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	readJSON(t, conn, &msg)
	assert.Equal(t, eventbus.OpDelete, msg.Data.Op)
}

func TestChanges_FailedWriteNotPushed(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialChanges(t, srv)

	// 校验失败的写入不产生事件，随后的成功写入是收到的第一条
	resp, err := http.Post(srv.URL+"/api/restaurants", "application/json", strings.NewReader(`{"name":""}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/reviews", "application/json",
		strings.NewReader(`{"restaurant":1,"user":"u","rating":3,"comments":"fine"}`))
	require.NoError(t, err)
	resp.Body.Close()

	var msg wsEnvelope
	readJSON(t, conn, &msg)
	assert.Equal(t, "reviews", msg.Data.Collection)
}

func TestChanges_PingPong(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialChanges(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	var msg wsEnvelope
	readJSON(t, conn, &msg)
	assert.Equal(t, "pong", msg.Type)
}

func TestChanges_HubClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialChanges(t, srv)
	env.hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err = %v", err)
}

func TestChanges_Disabled(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Changes = nil })

	w := env.do(http.MethodGet, "/ws/changes", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
