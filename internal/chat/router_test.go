package chat

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Deekshap16/Instaclone/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// newTestClient 构造一个不带底层连接的客户端，只用于投递测试
func newTestClient(hub *Hub, userID int) *Client {
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	return c
}

// TestRouteToOnlineReceiver 测试接收方在线时的投递
func TestRouteToOnlineReceiver(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	router := NewRouter(registry, hub)

	bob := newTestClient(hub, 2)
	registry.Join(2, bob.id)

	sentAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	delivered := router.Route(1, 2, "hello", sentAt)
	assert.True(t, delivered)

	select {
	case payload := <-bob.send:
		var env Envelope
		assert.NoError(t, json.Unmarshal(payload, &env))
		assert.Equal(t, EventReceiveMessage, env.Event)
		assert.NotNil(t, env.Data)
		assert.Equal(t, 1, env.Data.SenderID)
		assert.Equal(t, "hello", env.Data.Message)
		assert.True(t, sentAt.Equal(env.Data.CreatedAt))
	default:
		t.Fatal("接收方没有收到消息")
	}
}

// TestRouteToOfflineReceiver 测试接收方不在线时返回 false 且无副作用
func TestRouteToOfflineReceiver(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	router := NewRouter(registry, hub)

	delivered := router.Route(1, 42, "hello", time.Time{})
	assert.False(t, delivered)
}

// TestRouteInjectsTimestamp 测试未指定时间戳时由服务端注入
func TestRouteInjectsTimestamp(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	router := NewRouter(registry, hub)

	bob := newTestClient(hub, 2)
	registry.Join(2, bob.id)

	before := time.Now()
	delivered := router.Route(1, 2, "hi", time.Time{})
	assert.True(t, delivered)

	payload := <-bob.send
	var env Envelope
	assert.NoError(t, json.Unmarshal(payload, &env))
	assert.False(t, env.Data.CreatedAt.Before(before.Truncate(time.Second)))
}

// TestRouteAfterDisconnect 测试断开后投递失败
func TestRouteAfterDisconnect(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	router := NewRouter(registry, hub)

	bob := newTestClient(hub, 2)
	registry.Join(2, bob.id)

	hub.Unregister(bob)

	delivered := router.Route(1, 2, "hello", time.Time{})
	assert.False(t, delivered)
}

// TestPushDuringUnregister 测试投递与注销并发时不会向已关闭的通道写入
func TestPushDuringUnregister(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	for i := 0; i < 2000; i++ {
		c := newTestClient(hub, 2)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hub.Push(c.id, []byte("x"))
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Unregister(c)
		}()
		wg.Wait()

		assert.False(t, hub.Push(c.id, []byte("after")))
	}
}

// TestPushDropsWhenBufferFull 测试发送缓冲满时丢弃而不阻塞
func TestPushDropsWhenBufferFull(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	bob := newTestClient(hub, 2)
	for i := 0; i < sendBuffer; i++ {
		assert.True(t, hub.Push(bob.id, []byte("x")))
	}
	assert.False(t, hub.Push(bob.id, []byte("overflow")))
}
