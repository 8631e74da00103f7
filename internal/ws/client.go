package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Константы
const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 64 * 1024 // 64KB
	maxSendChannelSize = 256
)

// Client живое WebSocket соединение. Идентичность (UserID, SenderName)
// привязывается при допуске и не меняется до конца жизни соединения.
type Client struct {
	ID         string
	UserID     uint
	SenderName string

	// Комнаты, в которых состоит соединение. Мутируется только из горутины
	// чтения этого соединения, через методы хаба.
	rooms map[uint]bool

	ctx      context.Context
	cancel   context.CancelFunc
	conn     *websocket.Conn
	send     chan []byte
	mu       sync.RWMutex
	isClosed bool
}

// NewClient создает нового клиента
func NewClient(ctx context.Context, conn *websocket.Conn, id string, userID uint, senderName string) *Client {
	ctx, cancel := context.WithCancel(ctx)

	return &Client{
		ID:         id,
		UserID:     userID,
		SenderName: senderName,
		rooms:      make(map[uint]bool),
		ctx:        ctx,
		cancel:     cancel,
		conn:       conn,
		send:       make(chan []byte, maxSendChannelSize),
	}
}

// ReadPump читает события от клиента и обрабатывает их строго по порядку прихода
func (c *Client) ReadPump(handleIncoming func(*Client, InEvent)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev InEvent
			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure) {
					log.Printf("client read error: %v", err)
				}
				return
			}

			handleIncoming(c, ev)
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return nil
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// Канал закрыт
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return err
			}

			if _, err := w.Write(message); err != nil {
				return err
			}

			// Обработка нескольких сообщений в одном writer
			n := len(c.send)
			for i := 0; i < n; i++ {
				if _, err := w.Write(<-c.send); err != nil {
					return err
				}
			}

			if err := w.Close(); err != nil {
				return err
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// SendJSON отправляет исходящее событие
func (c *Client) SendJSON(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("client marshal error: %v", err)
		return false
	}

	return c.SendRaw(data)
}

// SendError отправляет клиенту нефатальное событие error
func (c *Client) SendError(message string) {
	c.SendJSON(OutEvent{Event: EventError, Data: ErrorData{Message: message}})
}

// SendRaw отправляет сырые данные без блокировки: если буфер соединения
// переполнен, сообщение отбрасывается — медленный получатель не тормозит остальных
func (c *Client) SendRaw(data []byte) bool {
	c.mu.RLock()
	if c.isClosed {
		c.mu.RUnlock()
		return false
	}

	select {
	case c.send <- data:
		c.mu.RUnlock()
		return true
	default:
		c.mu.RUnlock()
		// Перегруз - пропускаем сообщение
		return false
	}
}

// Close закрывает соединение
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed {
		return
	}

	c.isClosed = true
	c.cancel()
	close(c.send)
	c.conn.Close()
}

// IsClosed проверяет, закрыто ли соединение
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isClosed
}
