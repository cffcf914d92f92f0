package chat

import (
	"encoding/json"
	"time"

	"github.com/Deekshap16/Instaclone/internal/util"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client 对应一个 websocket 连接。用户身份在升级握手时
// 通过令牌验证确定，连接收到 join 事件后才写入在线注册表
type Client struct {
	id     string
	userID int
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump 循环读取客户端事件，连接断开时负责注销
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				util.Logger.Warn("websocket读取异常", zap.Error(err), zap.String("conn_id", c.id))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			util.Logger.Warn("无法解析的事件", zap.Error(err), zap.String("conn_id", c.id))
			continue
		}

		switch env.Event {
		// 身份以握手时验证过的令牌为准，事件里携带的 user_id 一律忽略
		case EventJoin:
			c.hub.registry.Join(c.userID, c.id)
			util.Logger.Info("用户上线",
				zap.Int("user_id", c.userID), zap.String("conn_id", c.id))

		case EventSendMessage:
			if c.hub.handler == nil {
				continue
			}
			if env.ReceiverID == 0 || env.Message == "" {
				continue
			}
			c.hub.handler.HandleMessage(c.userID, env.ReceiverID, env.Message)

		default:
			util.Logger.Debug("未知事件", zap.String("event", env.Event))
		}
	}
}

// WritePump 将投递队列中的帧写出，并定期发送心跳
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
