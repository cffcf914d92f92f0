package mysql

import (
	"database/sql"

	"github.com/Deekshap16/Instaclone/internal/common"
	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *messageRepository {
	return &messageRepository{db: db}
}

// Create 持久化一条消息。消息表是只追加的
func (r *messageRepository) Create(message *model.Message) error {
	return common.WithRetry(func() error {
		query := `INSERT INTO messages (sender_id, receiver_id, content, created_at)
                  VALUES (?, ?, ?, NOW())`
		result, err := r.db.Exec(query, message.SenderID, message.ReceiverID, message.Content)
		if err != nil {
			util.Logger.Error("创建消息失败", zap.Error(err),
				zap.Int("sender_id", message.SenderID),
				zap.Int("receiver_id", message.ReceiverID))
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		message.ID = int(id)

		// 回读服务器分配的时间戳
		return r.db.QueryRow(`SELECT created_at FROM messages WHERE id = ?`, message.ID).
			Scan(&message.CreatedAt)
	}, 3)
}

// GetBetween 返回两个用户之间的全部消息，按时间升序
func (r *messageRepository) GetBetween(userID, otherID int) ([]*model.Message, error) {
	query := `
        SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at,
               s.username, s.full_name, s.avatar_url,
               t.username, t.full_name, t.avatar_url
        FROM messages m
        LEFT JOIN users s ON m.sender_id = s.id
        LEFT JOIN users t ON m.receiver_id = t.id
        WHERE (m.sender_id = ? AND m.receiver_id = ?)
           OR (m.sender_id = ? AND m.receiver_id = ?)
        ORDER BY m.created_at ASC`

	return r.queryMessages(query, userID, otherID, otherID, userID)
}

// GetAllForUser 返回该用户参与的全部消息，按时间降序。
// 没有分页：会话列表的推导需要完整历史（这是一个已知的规模上限）
func (r *messageRepository) GetAllForUser(userID int) ([]*model.Message, error) {
	query := `
        SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at,
               s.username, s.full_name, s.avatar_url,
               t.username, t.full_name, t.avatar_url
        FROM messages m
        LEFT JOIN users s ON m.sender_id = s.id
        LEFT JOIN users t ON m.receiver_id = t.id
        WHERE m.sender_id = ? OR m.receiver_id = ?
        ORDER BY m.created_at DESC`

	return r.queryMessages(query, userID, userID)
}

func (r *messageRepository) queryMessages(query string, args ...interface{}) ([]*model.Message, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var msg model.Message
		var sender, receiver model.UserSummary
		err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt,
			&sender.Username, &sender.FullName, &sender.AvatarURL,
			&receiver.Username, &receiver.FullName, &receiver.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		sender.ID = msg.SenderID
		receiver.ID = msg.ReceiverID
		msg.Sender = &sender
		msg.Receiver = &receiver
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
