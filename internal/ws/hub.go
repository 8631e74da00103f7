package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const cleanupInterval = 5 * time.Minute

// Hub владеет живыми соединениями, реестром комнат и рассылкой.
// Создается один раз при старте процесса и передается по ссылке всем, кто
// публикует события — и socket-обработчику, и HTTP-обработчику уведомлений.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[uint]*Room            // groupID -> комната
	userConns map[uint]map[*Client]bool // userID -> живые соединения пользователя
	shutdown  chan struct{}
	metrics   *Metrics
}

// Metrics метрики
type Metrics struct {
	EventsPublished atomic.Int64
	Delivered       atomic.Int64
	Dropped         atomic.Int64
	Connections     atomic.Int64
}

// NewHub создает новый хаб
func NewHub() *Hub {
	hub := &Hub{
		rooms:     make(map[uint]*Room),
		userConns: make(map[uint]map[*Client]bool),
		shutdown:  make(chan struct{}),
		metrics:   &Metrics{},
	}

	// Сборщик пустых комнат
	go hub.cleanupLoop()

	return hub
}

// Metrics возвращает счетчики хаба
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Register регистрирует допущенное соединение
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.userConns[c.UserID]; !exists {
		h.userConns[c.UserID] = make(map[*Client]bool)
	}
	h.userConns[c.UserID][c] = true

	h.metrics.Connections.Inc()
}

// Unregister вызывается ровно один раз при разрыве: снимает соединение со всех
// комнат и из индекса пользователя. Возвращает комнаты, которые оно покинуло.
func (h *Hub) Unregister(c *Client) []uint {
	left := h.LeaveAll(c)

	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.userConns[c.UserID]; exists {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.userConns, c.UserID)
		}
	}

	h.metrics.Connections.Dec()

	return left
}

// getRoom возвращает комнату, создавая ее при первом подписчике
func (h *Hub) getRoom(groupID uint) *Room {
	h.mu.RLock()
	room, exists := h.rooms[groupID]
	h.mu.RUnlock()

	if exists {
		return room
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Двойная проверка
	if room, exists := h.rooms[groupID]; exists {
		return room
	}

	room = NewRoom(groupID)
	h.rooms[groupID] = room

	return room
}

// getRoomSafe возвращает комнату, если она существует
func (h *Hub) getRoomSafe(groupID uint) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[groupID]
	return room, exists
}

// JoinRoom подписывает соединение на комнату, повторный вызов — no-op
func (h *Hub) JoinRoom(c *Client, groupID uint) {
	room := h.getRoom(groupID)
	room.Add(c)
	c.rooms[groupID] = true
}

// LeaveRoom снимает подписку, отсутствующая подписка — no-op
func (h *Hub) LeaveRoom(c *Client, groupID uint) {
	if room, exists := h.getRoomSafe(groupID); exists {
		room.Remove(c)
	}
	delete(c.rooms, groupID)
}

// LeaveAll снимает соединение со всех его комнат
func (h *Hub) LeaveAll(c *Client) []uint {
	left := make([]uint, 0, len(c.rooms))
	for groupID := range c.rooms {
		if room, exists := h.getRoomSafe(groupID); exists {
			room.Remove(c)
		}
		left = append(left, groupID)
	}
	c.rooms = make(map[uint]bool)

	return left
}

// UserSubscribed сообщает, есть ли у пользователя живое соединение в комнате
func (h *Hub) UserSubscribed(groupID, userID uint) bool {
	room, exists := h.getRoomSafe(groupID)
	if !exists {
		return false
	}

	for _, client := range room.Snapshot() {
		if client.UserID == userID {
			return true
		}
	}

	return false
}

// Subscribers возвращает снапшот подписчиков комнаты.
// Для неизвестной комнаты — пустой срез, не ошибка.
func (h *Hub) Subscribers(groupID uint) []*Client {
	room, exists := h.getRoomSafe(groupID)
	if !exists {
		return nil
	}

	return room.Snapshot()
}

// PublishToRoom доставляет событие всем текущим подписчикам комнаты.
// Доставка fire-and-forget: зависший получатель не блокирует ни вызывающего,
// ни остальных. Вызывается строго после успешной записи в хранилище.
func (h *Hub) PublishToRoom(groupID uint, event string, payload any) {
	h.publishToRoom(groupID, nil, event, payload)
}

// PublishToRoomExcept то же, что PublishToRoom, но без одного получателя
// (эфемерные события вроде typing не возвращаются отправителю)
func (h *Hub) PublishToRoomExcept(groupID uint, exclude *Client, event string, payload any) {
	h.publishToRoom(groupID, exclude, event, payload)
}

func (h *Hub) publishToRoom(groupID uint, exclude *Client, event string, payload any) {
	room, exists := h.getRoomSafe(groupID)
	if !exists {
		return
	}

	data, err := json.Marshal(OutEvent{Event: event, Data: payload})
	if err != nil {
		log.Printf("hub: failed to marshal room event: %v", err)
		return
	}

	h.metrics.EventsPublished.Inc()

	for _, client := range room.Snapshot() {
		if client == exclude {
			continue
		}
		if client.SendRaw(data) {
			h.metrics.Delivered.Inc()
		} else {
			h.metrics.Dropped.Inc()
		}
	}
}

// PublishToUser доставляет событие на каждое живое соединение пользователя —
// их может быть ноль, одно или несколько
func (h *Hub) PublishToUser(userID uint, event string, payload any) {
	data, err := json.Marshal(OutEvent{Event: event, Data: payload})
	if err != nil {
		log.Printf("hub: failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.userConns[userID]))
	for client := range h.userConns[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.metrics.EventsPublished.Inc()

	for _, client := range clients {
		if client.SendRaw(data) {
			h.metrics.Delivered.Inc()
		} else {
			h.metrics.Dropped.Inc()
		}
	}
}

// Shutdown останавливает хаб
func (h *Hub) Shutdown() {
	close(h.shutdown)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.rooms = make(map[uint]*Room)
	h.userConns = make(map[uint]map[*Client]bool)
}

// cleanupLoop периодически удаляет опустевшие комнаты: комната существует
// только пока в ней есть хотя бы один подписчик
func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.shutdown:
			return
		case <-ticker.C:
			h.cleanupEmptyRooms()
		}
	}
}

func (h *Hub) cleanupEmptyRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for groupID, room := range h.rooms {
		if room.IsEmpty() {
			delete(h.rooms, groupID)
		}
	}
}

// Room множество соединений, подписанных на группу. Не хранится в базе:
// комната — производный адресный ключ, живет только пока есть подписчики.
type Room struct {
	groupID    uint
	mu         sync.RWMutex
	clients    map[string]*Client // connectionID -> Client
	createdAt  time.Time
	lastActive atomic.Time
}

// NewRoom создает новую комнату
func NewRoom(groupID uint) *Room {
	room := &Room{
		groupID:   groupID,
		clients:   make(map[string]*Client),
		createdAt: time.Now(),
	}

	room.lastActive.Store(time.Now())

	return room
}

// Add добавляет соединение, идемпотентно
func (r *Room) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c.ID] = c
	r.lastActive.Store(time.Now())
}

// Remove убирает соединение, идемпотентно
func (r *Room) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, c.ID)
	r.lastActive.Store(time.Now())
}

// Snapshot возвращает согласованный срез текущих подписчиков: join, гонящийся
// с рассылкой по той же комнате, либо целиком видит соединение, либо целиком нет
func (r *Room) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}

	return clients
}

// Size возвращает число подписчиков
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}

// IsEmpty проверяет, пуста ли комната
func (r *Room) IsEmpty() bool {
	return r.Size() == 0
}
