package wsbridge

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/glyphwave"
)

type recorder struct {
	mu   sync.Mutex
	msgs []glyphwave.Message
}

func (r *recorder) Apply(m glyphwave.Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBridgePublishesSceneUpdates(t *testing.T) {
	b := New(nil, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	b.Publish(glyphwave.SceneEvent{Scene: glyphwave.SceneShell, Progress: 0.1, FPS: 60})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	m, err := glyphwave.UnmarshalMessage(data)
	require.NoError(t, err)
	assert.Equal(t, glyphwave.MsgSceneUpdate, m.Type)
	assert.Equal(t, glyphwave.SceneShell, m.Scene)
}

func TestBridgeSendsLastSceneOnConnect(t *testing.T) {
	b := New(nil, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	b.Publish(glyphwave.SceneEvent{Scene: glyphwave.SceneWood})
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	m, err := glyphwave.UnmarshalMessage(data)
	require.NoError(t, err)
	assert.Equal(t, glyphwave.SceneWood, m.Scene)
}

func TestBridgeForwardsUpdates(t *testing.T) {
	rec := &recorder{}
	b := New(rec, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"update","speed":2}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`garbage`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"update","pixelSize":20}`)))

	require.Eventually(t, func() bool { return rec.len() == 2 }, 2*time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 2.0, *rec.msgs[0].Speed)
	assert.Equal(t, 20.0, *rec.msgs[1].PixelSize)
}

func TestBridgeRejectsClientSizes(t *testing.T) {
	rec := &recorder{}
	b := New(rec, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"update","width":200000,"height":200000}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"update","width":50,"pixelSize":0.0001,"speed":1e9}`)))

	require.Eventually(t, func() bool { return rec.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.msgs, 1)
	m := rec.msgs[0]
	assert.Nil(t, m.Width)
	assert.Nil(t, m.Height)
	assert.Equal(t, glyphwave.MinPixelSize, *m.PixelSize)
	assert.Equal(t, glyphwave.MaxSpeed, *m.Speed)
}

func TestBridgeDropsDisconnectedClients(t *testing.T) {
	b := New(nil, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return b.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBridgePublishNeverBlocks(t *testing.T) {
	b := New(nil, nil)
	srv := httptest.NewServer(b)
	defer srv.Close()

	dial(t, srv) // never reads
	require.Eventually(t, func() bool { return b.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10*sendBuffer; i++ {
			b.Publish(glyphwave.SceneEvent{Scene: glyphwave.SceneHive, FPS: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
}
