package chat

import (
	"net/http"
	"strconv"

	"github.com/Deekshap16/Instaclone/internal/chat"
	"github.com/Deekshap16/Instaclone/internal/errors"
	"github.com/Deekshap16/Instaclone/internal/service"
	"github.com/Deekshap16/Instaclone/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 跨域由CORS中间件统一控制，这里放行握手
		return true
	},
}

// ChatHandler 处理私信相关的HTTP请求和WebSocket连接
type ChatHandler struct {
	chatService service.ChatServiceInterface
	hub         *chat.Hub
}

func NewChatHandler(chatService service.ChatServiceInterface, hub *chat.Hub) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
	}
}

// SendMessage 发送私信，先落库再尝试实时推送
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		ReceiverID int    `json:"receiver_id" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "接收者和消息内容不能为空", err))
		return
	}

	message, err := h.chatService.SendMessage(c.GetInt("user_id"), req.ReceiverID, req.Message)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("发送私信失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "发送私信失败", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": message,
	})
}

// GetConversations 获取会话列表，按最近消息时间排序
func (h *ChatHandler) GetConversations(c *gin.Context) {
	conversations, err := h.chatService.ListConversations(c.GetInt("user_id"))
	if err != nil {
		util.Logger.Error("获取会话列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取会话列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"conversations": conversations}, "")
}

// GetMessages 获取与指定用户的历史消息，按时间升序
func (h *ChatHandler) GetMessages(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	messages, err := h.chatService.GetMessages(c.GetInt("user_id"), otherID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取历史消息失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"messages": messages}, "")
}

// ServeWS 验证令牌后升级WebSocket连接并启动读写泵。
// 浏览器的 WebSocket API 不支持自定义请求头，令牌通过查询参数传递
func (h *ChatHandler) ServeWS(c *gin.Context) {
	userID, err := util.ValidateToken(c.Query("token"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "无效或过期的令牌", err))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.Logger.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := chat.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
