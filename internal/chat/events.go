package chat

import "time"

// 客户端与服务端之间的事件名
const (
	EventJoin           = "join"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
)

// Envelope 是 websocket 上所有事件的统一外层结构
type Envelope struct {
	Event string `json:"event"`

	// join
	UserID int `json:"user_id,omitempty"`

	// sendMessage
	ReceiverID int    `json:"receiver_id,omitempty"`
	Message    string `json:"message,omitempty"`

	// receiveMessage
	Data *MessagePayload `json:"data,omitempty"`
}

// MessagePayload 是投递给接收方的消息载荷：
// 消息正文加上服务端注入的发送方ID和时间戳
type MessagePayload struct {
	SenderID  int       `json:"sender_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
