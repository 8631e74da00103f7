package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/pkg/httputils"
	"festapp/chat_backend/internal/pkg/urlutil"
	"festapp/chat_backend/internal/repository"
	"festapp/chat_backend/internal/service"

	"github.com/google/uuid"
)

// SocketHandler принимает WebSocket соединения и обрабатывает команды чата.
// Команды одного соединения выполняются в порядке прихода; разные соединения
// обрабатываются независимо.
type SocketHandler struct {
	hub         *Hub
	chatService service.ChatService
	presence    repository.PresenceRepository
	baseURL     string
}

// NewSocketHandler создает новый обработчик соединений
func NewSocketHandler(hub *Hub, chatService service.ChatService, presence repository.PresenceRepository, baseURL string) *SocketHandler {
	return &SocketHandler{
		hub:         hub,
		chatService: chatService,
		presence:    presence,
		baseURL:     baseURL,
	}
}

// ServeHTTP проводит допуск и поднимает соединение. Неудачный допуск
// отклоняет соединение сразу: оно не попадает ни в комнаты, ни в рассылку.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	creds, err := ParseCredentials(r.URL.Query())
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := NewClient(r.Context(), conn, uuid.New().String(), creds.UserID, creds.SenderName)
	h.hub.Register(client)

	log.Printf("ws: user connected: %d (%s)", client.UserID, client.SenderName)

	go client.WritePump()

	client.ReadPump(h.handleEvent)

	// Разрыв: соединение покидает все комнаты ровно один раз
	left := h.hub.Unregister(client)
	for _, groupID := range left {
		// Пользователь онлайн, пока жива хоть одна его подписка на комнату:
		// зеркало чистится только когда ушло последнее соединение
		if h.hub.UserSubscribed(groupID, client.UserID) {
			continue
		}

		if _, err := h.presence.RemoveUserFromGroup(context.Background(), groupID, client.UserID); err != nil {
			log.Printf("ws: presence cleanup failed for group %d: %v", groupID, err)
		}
	}

	log.Printf("ws: user disconnected: %d", client.UserID)
}

func (h *SocketHandler) handleEvent(c *Client, ev InEvent) {
	switch ev.Event {
	case EventJoinGroups:
		h.handleJoinGroups(c, ev.Data)
	case EventSendMessage:
		h.handleSendMessage(c, ev.Data)
	case EventSendMessageWithAttachment:
		h.handleSendMessageWithAttachment(c, ev.Data)
	case EventGetMessageHistory:
		h.handleGetMessageHistory(c, ev.Data)
	case EventTypingStart:
		h.handleTyping(c, ev.Data, EventUserTyping)
	case EventTypingStop:
		h.handleTyping(c, ev.Data, EventUserStoppedTyping)
	default:
		c.SendError(fmt.Sprintf("unknown event: %s", ev.Event))
	}
}

type joinGroupsData struct {
	GroupIDs []uint `json:"groupIds"`
}

func (h *SocketHandler) handleJoinGroups(c *Client, data json.RawMessage) {
	var payload joinGroupsData
	if err := json.Unmarshal(data, &payload); err != nil || payload.GroupIDs == nil {
		c.SendError("Invalid group IDs format")
		return
	}

	joined := 0
	for _, groupID := range payload.GroupIDs {
		// Нулевой ID не адресует группу, комната под него не создается
		if groupID == 0 {
			continue
		}

		h.hub.JoinRoom(c, groupID)
		joined++

		// Зеркало присутствия best-effort: ошибка Redis не ломает join
		if err := h.presence.AddUserToGroup(context.Background(), groupID, c.UserID); err != nil {
			log.Printf("ws: presence update failed for group %d: %v", groupID, err)
		}
	}

	c.SendJSON(OutEvent{
		Event: EventGroupsJoined,
		Data: GroupsJoinedData{
			Success: true,
			Message: fmt.Sprintf("Joined %d groups", joined),
		},
	})
}

type sendMessageData struct {
	GroupID     uint                     `json:"groupId"`
	MessageType string                   `json:"messageType"`
	ContentText string                   `json:"contentText"`
	Attachment  *service.AttachmentInput `json:"attachment"`
}

func (h *SocketHandler) handleSendMessage(c *Client, data json.RawMessage) {
	var payload sendMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		c.SendError("Invalid message format")
		return
	}

	if payload.GroupID == 0 {
		c.SendError("Group ID is required")
		return
	}

	msg, err := h.chatService.SendMessage(
		context.Background(),
		payload.GroupID, c.UserID, c.SenderName,
		payload.MessageType, payload.ContentText,
	)
	if err != nil {
		// Ошибка записи уходит только отправителю, рассылки нет
		log.Printf("ws: send_message failed for user %d: %v", c.UserID, err)
		c.SendError("Failed to send message")
		return
	}

	h.broadcastMessage(msg)
}

func (h *SocketHandler) handleSendMessageWithAttachment(c *Client, data json.RawMessage) {
	var payload sendMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		c.SendError("Invalid message format")
		return
	}

	if payload.GroupID == 0 || payload.Attachment == nil {
		c.SendError("Group ID and attachment are required")
		return
	}

	msg, err := h.chatService.SendMessageWithAttachment(
		context.Background(),
		payload.GroupID, c.UserID, c.SenderName,
		payload.MessageType, payload.ContentText,
		*payload.Attachment,
	)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentNotSaved) {
			// Сообщение уже в хранилище, отката нет — отправителю уходит
			// ошибка, рассылка не выполняется
			log.Printf("ws: attachment lost for message %d: %v", msg.ID, err)
			c.SendError("Message saved but attachment failed")
			return
		}

		log.Printf("ws: send_message_with_attachment failed for user %d: %v", c.UserID, err)
		c.SendError("Failed to send message with attachment")
		return
	}

	h.broadcastMessage(msg)
}

// broadcastMessage рассылает уже сохраненное сообщение подписчикам его группы
func (h *SocketHandler) broadcastMessage(msg *model.ChatMessage) {
	urlutil.ResolveMessageURLs(h.baseURL, msg)
	h.hub.PublishToRoom(msg.GroupID, EventNewMessage, model.NewMessagePayload(*msg))
}

type historyRequestData struct {
	GroupID uint `json:"groupId"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
}

type historyData struct {
	GroupID    uint                   `json:"groupId"`
	Messages   []model.MessagePayload `json:"messages"`
	Pagination Pagination             `json:"pagination"`
}

func (h *SocketHandler) handleGetMessageHistory(c *Client, data json.RawMessage) {
	var payload historyRequestData
	if err := json.Unmarshal(data, &payload); err != nil {
		c.SendError("Invalid history request format")
		return
	}

	if payload.GroupID == 0 {
		c.SendError("Group ID is required")
		return
	}

	if payload.Page <= 0 {
		payload.Page = 1
	}
	if payload.Limit <= 0 {
		payload.Limit = 50
	}
	// Лимит зажимается здесь же: hasMore считается от фактического размера страницы
	if payload.Limit > 100 {
		payload.Limit = 100
	}

	messages, err := h.chatService.GetMessages(context.Background(), payload.GroupID, payload.Page, payload.Limit)
	if err != nil {
		log.Printf("ws: get_message_history failed for group %d: %v", payload.GroupID, err)
		c.SendError("Failed to get message history")
		return
	}

	payloads := make([]model.MessagePayload, 0, len(messages))
	for i := range messages {
		urlutil.ResolveMessageURLs(h.baseURL, &messages[i])
		payloads = append(payloads, model.NewMessagePayload(messages[i]))
	}

	// Приватный ответ запросившему, не рассылка
	c.SendJSON(OutEvent{
		Event: EventMessageHistory,
		Data: historyData{
			GroupID:  payload.GroupID,
			Messages: payloads,
			Pagination: Pagination{
				Page:  payload.Page,
				Limit: payload.Limit,
				// Аппроксимация: полная страница значит "возможно есть еще"
				HasMore: len(messages) == payload.Limit,
			},
		},
	})
}

type typingData struct {
	GroupID uint `json:"groupId"`
}

// handleTyping рассылает эфемерное событие присутствия всем подписчикам
// комнаты, кроме самого отправителя. Ничего не сохраняется; кривой payload
// молча игнорируется — у presence нет требований к durability.
func (h *SocketHandler) handleTyping(c *Client, data json.RawMessage, event string) {
	var payload typingData
	if err := json.Unmarshal(data, &payload); err != nil || payload.GroupID == 0 {
		return
	}

	h.hub.PublishToRoomExcept(payload.GroupID, c, event, TypingData{
		UserID:  c.UserID,
		GroupID: payload.GroupID,
	})
}
