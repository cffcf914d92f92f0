package chat

import (
	"encoding/json"
	"time"

	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

// Router 负责把一条消息投递到接收方的活跃连接。
// 投递是尽力而为的：没有确认、没有重试、没有队列；
// 接收方不在线时直接返回 false，不产生任何副作用
type Router struct {
	registry *Registry
	hub      *Hub
}

func NewRouter(registry *Registry, hub *Hub) *Router {
	return &Router{
		registry: registry,
		hub:      hub,
	}
}

// Route 查找接收方的活跃连接并推送消息。
// 返回值只反映查找时接收方是否在线；推送本身不被确认，
// 注册表中的陈旧连接会静默吞掉消息，直到下一次断开事件纠正它
func (r *Router) Route(senderID, receiverID int, content string, createdAt time.Time) bool {
	connID, ok := r.registry.Lookup(receiverID)
	if !ok {
		return false
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	payload, err := json.Marshal(Envelope{
		Event: EventReceiveMessage,
		Data: &MessagePayload{
			SenderID:  senderID,
			Message:   content,
			CreatedAt: createdAt,
		},
	})
	if err != nil {
		util.Logger.Error("序列化投递载荷失败", zap.Error(err))
		return false
	}

	if !r.hub.Push(connID, payload) {
		util.Logger.Debug("消息推送未送达",
			zap.Int("receiver_id", receiverID), zap.String("conn_id", connID))
	}
	return true
}
