package ws

import "encoding/json"

// Входящие события
const (
	EventJoinGroups                = "join_groups"
	EventSendMessage               = "send_message"
	EventSendMessageWithAttachment = "send_message_with_attachment"
	EventGetMessageHistory         = "get_message_history"
	EventTypingStart               = "typing_start"
	EventTypingStop                = "typing_stop"
)

// Исходящие события
const (
	EventGroupsJoined      = "groups_joined"
	EventNewMessage        = "new_message"
	EventMessageHistory    = "message_history"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventError             = "error"
)

// InEvent входящее событие
type InEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutEvent исходящее событие
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ErrorData тело события error. Событие не фатально: соединение живет дальше.
type ErrorData struct {
	Message string `json:"message"`
}

// TypingData тело событий user_typing / user_stopped_typing
type TypingData struct {
	UserID  uint `json:"userId"`
	GroupID uint `json:"groupId"`
}

// GroupsJoinedData тело события groups_joined
type GroupsJoinedData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pagination блок пагинации message_history
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}
