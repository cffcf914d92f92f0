package chat

import (
	"sync"

	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

// MessageHandler 处理客户端通过 websocket 发来的消息。
// 由聊天服务实现：先落库再尽力投递，与 REST 发送路径共用同一条链路
type MessageHandler interface {
	HandleMessage(senderID, receiverID int, content string)
}

// Hub 管理全部活跃的 websocket 连接，并在连接生命周期事件上
// 维护在线注册表
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	registry *Registry
	handler  MessageHandler
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		registry: registry,
	}
}

// SetMessageHandler 注入消息处理器。
// 聊天服务依赖投递路由（进而依赖 Hub），所以只能在构造之后注入
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.handler = handler
}

// Register 登记一个新连接。身份在握手时已经确定，
// 但在收到 join 事件之前不写入在线注册表
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	util.Logger.Info("客户端已连接", zap.String("conn_id", c.id))
}

// Unregister 注销连接并按连接ID清理在线注册表
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()

	h.registry.Remove(c.id)

	util.Logger.Info("客户端已断开", zap.String("conn_id", c.id))
}

// Push 向指定连接投递一帧数据。发送缓冲已满时直接丢弃，
// 不阻塞调用方。整个发送过程持有读锁，与 Unregister 中的
// close(c.send) 互斥，避免向已关闭的通道写入
func (h *Hub) Push(connID string, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		util.Logger.Warn("发送缓冲已满，消息被丢弃", zap.String("conn_id", connID))
		return false
	}
}
