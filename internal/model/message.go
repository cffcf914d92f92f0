package model

import "time"

// Message 私信消息。创建后不可变，系统中不存在更新和删除
type Message struct {
	ID         int          `json:"id"`
	SenderID   int          `json:"sender_id"`
	ReceiverID int          `json:"receiver_id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"created_at"`
	Sender     *UserSummary `json:"sender,omitempty"`
	Receiver   *UserSummary `json:"receiver,omitempty"`
}

// Conversation 会话摘要：对端用户加上最近一条消息。
// 不落库，每次请求从消息历史中重新推导
type Conversation struct {
	User        *UserSummary `json:"user"`
	LastMessage string       `json:"last_message"`
	CreatedAt   time.Time    `json:"created_at"`
}
