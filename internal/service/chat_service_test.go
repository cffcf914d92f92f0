package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Deekshap16/Instaclone/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository 是 MessageRepository 接口的模拟实现
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(message *model.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetBetween(userID, otherID int) ([]*model.Message, error) {
	args := m.Called(userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *MockMessageRepository) GetAllForUser(userID int) ([]*model.Message, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

// MockRouter 是 DeliveryRouter 的模拟实现
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(senderID, receiverID int, content string, createdAt time.Time) bool {
	args := m.Called(senderID, receiverID, content, createdAt)
	return args.Bool(0)
}

func summary(id int, username string) *model.UserSummary {
	return &model.UserSummary{ID: id, Username: username}
}

func message(id, senderID, receiverID int, content string, createdAt time.Time) *model.Message {
	return &model.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  createdAt,
		Sender:     summary(senderID, ""),
		Receiver:   summary(receiverID, ""),
	}
}

// TestSendMessageStoresThenRoutes 测试发送消息先落库再推送
func TestSendMessageStoresThenRoutes(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	userRepo.On("FindByID", 2).Return(&model.User{ID: 2, Username: "bob"}, nil)
	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Username: "alice"}, nil)

	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msgRepo.On("Create", mock.AnythingOfType("*model.Message")).Run(func(args mock.Arguments) {
		msg := args.Get(0).(*model.Message)
		msg.ID = 10
		msg.CreatedAt = createdAt
	}).Return(nil)

	router.On("Route", 1, 2, "hello", createdAt).Return(true)

	msg, err := svc.SendMessage(1, 2, "hello")
	assert.NoError(t, err)
	assert.Equal(t, 10, msg.ID)
	assert.Equal(t, "alice", msg.Sender.Username)
	assert.Equal(t, "bob", msg.Receiver.Username)

	msgRepo.AssertExpectations(t)
	router.AssertExpectations(t)
}

// TestSendMessageOfflineReceiver 测试接收方不在线时发送依然成功
func TestSendMessageOfflineReceiver(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	userRepo.On("FindByID", mock.AnythingOfType("int")).Return(&model.User{ID: 2}, nil)
	msgRepo.On("Create", mock.AnythingOfType("*model.Message")).Return(nil)
	router.On("Route", 1, 2, "hello", mock.AnythingOfType("time.Time")).Return(false)

	msg, err := svc.SendMessage(1, 2, "hello")
	assert.NoError(t, err)
	assert.NotNil(t, msg)
}

// TestListConversationsDedup 测试会话列表按对端去重、最近优先
func TestListConversationsDedup(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	t1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	// 历史：A→B(t1)、B→A(t2)、A→C(t3)，仓库按时间降序返回
	alice := 1
	msgRepo.On("GetAllForUser", alice).Return([]*model.Message{
		message(3, 1, 3, "to carol", t3),
		message(2, 2, 1, "from bob", t2),
		message(1, 1, 2, "to bob", t1),
	}, nil)

	conversations, err := svc.ListConversations(alice)
	assert.NoError(t, err)
	assert.Len(t, conversations, 2)

	// C(t3) 在前，B(t2) 在后，每个对端只出现一次
	assert.Equal(t, 3, conversations[0].User.ID)
	assert.Equal(t, "to carol", conversations[0].LastMessage)
	assert.True(t, t3.Equal(conversations[0].CreatedAt))

	assert.Equal(t, 2, conversations[1].User.ID)
	assert.Equal(t, "from bob", conversations[1].LastMessage)
	assert.True(t, t2.Equal(conversations[1].CreatedAt))
}

// TestListConversationsCounterpart 测试对端取的是"不是自己"的一端
func TestListConversationsCounterpart(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	t1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	// 同一对用户来回多条消息只产生一个会话
	msgRepo.On("GetAllForUser", 1).Return([]*model.Message{
		message(4, 2, 1, "d", t1.Add(3*time.Hour)),
		message(3, 1, 2, "c", t1.Add(2*time.Hour)),
		message(2, 2, 1, "b", t1.Add(time.Hour)),
		message(1, 1, 2, "a", t1),
	}, nil)

	conversations, err := svc.ListConversations(1)
	assert.NoError(t, err)
	assert.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0].User.ID)
	assert.Equal(t, "d", conversations[0].LastMessage)
}

// TestListConversationsEmpty 测试没有消息时返回空列表
func TestListConversationsEmpty(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	msgRepo.On("GetAllForUser", 1).Return([]*model.Message{}, nil)

	conversations, err := svc.ListConversations(1)
	assert.NoError(t, err)
	assert.Empty(t, conversations)
}

// memMessageRepo 是基于切片的内存消息仓库，按落库顺序模拟时间升序
type memMessageRepo struct {
	nextID   int
	messages []*model.Message
}

func (r *memMessageRepo) Create(message *model.Message) error {
	r.nextID++
	message.ID = r.nextID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.nextID) * time.Minute)
	}
	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *memMessageRepo) GetBetween(userID, otherID int) ([]*model.Message, error) {
	var result []*model.Message
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memMessageRepo) GetAllForUser(userID int) ([]*model.Message, error) {
	var result []*model.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

// TestSendThenGetMessagesRoundTrip 测试发送后拉取历史：
// 每条消息恰好出现一次，按时间升序
func TestSendThenGetMessagesRoundTrip(t *testing.T) {
	msgRepo := &memMessageRepo{}
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Username: "alice"}, nil)
	userRepo.On("FindByID", 2).Return(&model.User{ID: 2, Username: "bob"}, nil)
	userRepo.On("FindByID", 3).Return(&model.User{ID: 3, Username: "carol"}, nil)
	router.On("Route", mock.AnythingOfType("int"), mock.AnythingOfType("int"),
		mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(false)

	for _, send := range []struct {
		sender, receiver int
		content          string
	}{
		{1, 2, "a"},
		{2, 1, "b"},
		{1, 3, "other pair"},
		{1, 2, "c"},
	} {
		_, err := svc.SendMessage(send.sender, send.receiver, send.content)
		assert.NoError(t, err)
	}

	messages, err := svc.GetMessages(1, 2)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)

	// 升序且不含其他对端的消息
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt))
	}
	assert.Equal(t, "a", messages[0].Content)
	assert.Equal(t, "b", messages[1].Content)
	assert.Equal(t, "c", messages[2].Content)
}

// TestGetMessagesUnknownUser 测试与不存在的用户拉取历史
func TestGetMessagesUnknownUser(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	router := new(MockRouter)
	svc := NewChatService(msgRepo, userRepo, router)

	userRepo.On("FindByID", 99).Return(nil, sql.ErrNoRows)

	_, err := svc.GetMessages(1, 99)
	assert.Error(t, err)
}
