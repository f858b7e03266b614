package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestPushNotification(t *testing.T) {
	hub := NewHub([]string{"*"}, zerolog.Nop())
	sess := Session{Role: models.RoleSeller, UserID: uuid.New()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeNotifications(w, r, sess)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Connections(sess.Role, sess.UserID) == 1 }, 2*time.Second, 10*time.Millisecond)

	// Same id under another role is a different user.
	hub.PushNotification(models.RoleBuyer, sess.UserID, &models.Notification{Title: "not yours"})
	hub.PushNotification(sess.Role, sess.UserID, &models.Notification{Title: "CMA ready"})

	var frame struct {
		Type         string              `json:"type"`
		Notification models.Notification `json:"notification"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "notification", frame.Type)
	assert.Equal(t, "CMA ready", frame.Notification.Title)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(sess.Role, sess.UserID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

type frameLog struct {
	mu     sync.Mutex
	frames []Frame
}

func (l *frameLog) handle(_ context.Context, f Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames = append(l.frames, f)
	if f.Content == "boom" {
		return errors.New("internal")
	}
	return nil
}

func (l *frameLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

func TestServeChat(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	room := uuid.New()
	sess := Session{Role: models.RoleAgent, UserID: uuid.New()}
	history := []models.Message{{Content: "earlier", SenderType: models.RoleSeller}}
	log := &frameLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeChat(w, r, sess, room, history, log.handle)
	}))
	defer srv.Close()

	conn := dial(t, srv)

	var prev struct {
		Type    string         `json:"type"`
		Message models.Message `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&prev))
	assert.Equal(t, "previous_message", prev.Type)
	assert.Equal(t, "earlier", prev.Message.Content)

	// Frames without a type are chat messages.
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "hello"}))
	require.Eventually(t, func() bool { return log.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	log.mu.Lock()
	assert.Equal(t, services.ChatMessage, log.frames[0].Type)
	log.mu.Unlock()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var errFrame struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, "Invalid JSON", errFrame.Error)

	require.NoError(t, conn.WriteJSON(Frame{Type: services.ChatMessage, Content: "boom"}))
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, "error", errFrame.Type)
	assert.Equal(t, "Failed to process message", errFrame.Error)

	hub.BroadcastChat(uuid.New(), services.ChatEvent{Type: services.ChatTyping})
	hub.BroadcastChat(room, services.ChatEvent{Type: services.ChatRead, ConversationID: room})
	var ev services.ChatEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, services.ChatRead, ev.Type)
	assert.Equal(t, room, ev.ConversationID)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://APP.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestSendAfterClose(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	c := &client{hub: hub, send: make(chan []byte, 1), sess: Session{Role: models.RoleBuyer, UserID: uuid.New()}}
	hub.register(c)

	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")), "buffer full")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.unregister(c)
		}()
		go func() {
			defer wg.Done()
			hub.PushNotification(models.RoleBuyer, c.sess.UserID, &models.Notification{Title: "late"})
			c.deliver([]byte("late"))
		}()
	}
	wg.Wait()

	assert.False(t, c.enqueue([]byte("c")))
	assert.Zero(t, hub.Connections(models.RoleBuyer, c.sess.UserID))
	msg, ok := <-c.send
	assert.True(t, ok)
	assert.Equal(t, "a", string(msg))
	_, ok = <-c.send
	assert.False(t, ok)
}
