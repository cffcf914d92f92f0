package interfaces

import "github.com/Deekshap16/Instaclone/internal/model"

// MessageRepository 定义了私信消息的数据库操作接口。
// 消息是只追加的：没有更新和删除操作
type MessageRepository interface {
	Create(message *model.Message) error
	// GetBetween 返回两个用户之间的全部消息，按创建时间升序
	GetBetween(userID, otherID int) ([]*model.Message, error)
	// GetAllForUser 返回该用户参与的全部消息，按创建时间降序，
	// 并附带发送方与接收方的用户摘要
	GetAllForUser(userID int) ([]*model.Message, error)
}
