package service

import (
	"database/sql"
	"time"

	"github.com/Deekshap16/Instaclone/internal/errors"
	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/repository/interfaces"
	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

// DeliveryRouter 把消息尽力投递到接收方的活跃连接。
// 返回值表示投递时接收方是否在线；投递失败对发送方不可见
type DeliveryRouter interface {
	Route(senderID, receiverID int, content string, createdAt time.Time) bool
}

// ChatService 处理私信的业务逻辑。
// REST 发送接口和 websocket 的 sendMessage 事件走同一条链路：
// 先持久化，再尽力推送，不存在只进在线通道不落库的消息
type ChatService struct {
	messageRepo interfaces.MessageRepository
	userRepo    interfaces.UserRepository
	router      DeliveryRouter
}

func NewChatService(messageRepo interfaces.MessageRepository, userRepo interfaces.UserRepository, router DeliveryRouter) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		router:      router,
	}
}

// SendMessage 持久化一条消息并尽力推送给在线的接收方。
// 持久化成功即视为发送成功；接收方是否在线不反馈给发送方
func (s *ChatService) SendMessage(senderID, receiverID int, content string) (*model.Message, error) {
	receiver, err := s.userRepo.FindByID(receiverID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrUserNotFound, "接收方不存在")
		}
		return nil, err
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "保存消息失败", err)
	}

	message.Sender = sender.Summary()
	message.Receiver = receiver.Summary()

	// 持久化之后尽力推送。两步之间不是原子的：
	// 进程在此崩溃只丢失一次通知，不丢失消息本身
	delivered := s.router.Route(senderID, receiverID, message.Content, message.CreatedAt)
	if !delivered {
		util.Logger.Debug("接收方不在线，仅持久化",
			zap.Int("sender_id", senderID), zap.Int("receiver_id", receiverID))
	}

	return message, nil
}

// HandleMessage 处理 websocket 上的 sendMessage 事件，
// 复用与 REST 相同的持久化加推送链路
func (s *ChatService) HandleMessage(senderID, receiverID int, content string) {
	if _, err := s.SendMessage(senderID, receiverID, content); err != nil {
		util.Logger.Error("处理websocket消息失败", zap.Error(err),
			zap.Int("sender_id", senderID), zap.Int("receiver_id", receiverID))
	}
}

// GetMessages 返回当前用户与对方之间的全部消息，按时间升序
func (s *ChatService) GetMessages(userID, otherID int) ([]*model.Message, error) {
	if _, err := s.userRepo.FindByID(otherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return nil, err
	}

	return s.messageRepo.GetBetween(userID, otherID)
}

// ListConversations 从完整消息历史推导会话列表：
// 按时间降序遍历，每个对端只保留第一次出现（即最近一条消息），
// 输出顺序即最近消息优先
func (s *ChatService) ListConversations(userID int) ([]*model.Conversation, error) {
	messages, err := s.messageRepo.GetAllForUser(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	conversations := make([]*model.Conversation, 0)
	for _, msg := range messages {
		counterpart := msg.Sender
		if msg.SenderID == userID {
			counterpart = msg.Receiver
		}
		if counterpart == nil || seen[counterpart.ID] {
			continue
		}
		seen[counterpart.ID] = true
		conversations = append(conversations, &model.Conversation{
			User:        counterpart,
			LastMessage: msg.Content,
			CreatedAt:   msg.CreatedAt,
		})
	}

	return conversations, nil
}

// ChatServiceInterface 定义聊天服务接口，便于在测试中替换
type ChatServiceInterface interface {
	SendMessage(senderID, receiverID int, content string) (*model.Message, error)
	GetMessages(userID, otherID int) ([]*model.Message, error)
	ListConversations(userID int) ([]*model.Conversation, error)
}

var _ ChatServiceInterface = (*ChatService)(nil)
