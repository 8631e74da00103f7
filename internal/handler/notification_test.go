package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"
	"festapp/chat_backend/internal/service"
	"festapp/chat_backend/internal/ws"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
)

type fakeNotificationService struct {
	createErr   error
	markReadErr error

	notifications []model.Notification
	total         int64
	affected      int64

	lastIsRead *bool
}

func (f *fakeNotificationService) CreateMany(ctx context.Context, userIDs []uint, notificationType string, data json.RawMessage) ([]model.Notification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	content, err := service.RenderTemplate(notificationType, nil)
	if err != nil {
		return nil, err
	}

	created := make([]model.Notification, 0, len(userIDs))
	for i, userID := range userIDs {
		created = append(created, model.Notification{
			ID:      uint(i + 1),
			UserID:  userID,
			Type:    notificationType,
			Data:    datatypes.JSON(data),
			Content: content,
		})
	}

	return created, nil
}

func (f *fakeNotificationService) GetByUser(ctx context.Context, userID uint, page, limit int, isRead *bool) ([]model.Notification, int64, error) {
	f.lastIsRead = isRead
	return f.notifications, f.total, nil
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, notificationID, userID uint) (*model.Notification, error) {
	if f.markReadErr != nil {
		return nil, f.markReadErr
	}

	return &model.Notification{ID: notificationID, UserID: userID, IsRead: true}, nil
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return f.affected, nil
}

func (f *fakeNotificationService) ClearAll(ctx context.Context, userID uint) (int64, error) {
	return f.affected, nil
}

var _ service.NotificationService = (*fakeNotificationService)(nil)

func newNotificationRouter(t *testing.T, svc service.NotificationService) *mux.Router {
	t.Helper()

	hub := ws.NewHub()
	t.Cleanup(hub.Shutdown)

	router := mux.NewRouter()
	NewNotificationHandler(svc, hub).RegisterRoutes(router)

	return router
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeSuccess(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope successEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("success = false, body: %s", rr.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Data, dst); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
}

func TestCreateNotifications(t *testing.T) {
	router := newNotificationRouter(t, &fakeNotificationService{})

	body := `{"data": {"festivalName": "Summer Fest"}, "list_user_id": [1, 2]}`
	req := httptest.NewRequest("POST", "/api/notification/festival_approval", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var payloads []model.NotificationPayload
	decodeSuccess(t, rr, &payloads)

	if len(payloads) != 2 {
		t.Fatalf("payloads = %d, want 2", len(payloads))
	}
	if payloads[0].UserID != 1 || payloads[1].UserID != 2 {
		t.Errorf("unexpected recipients: %+v", payloads)
	}
}

func TestCreateNotificationsValidation(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeNotificationService
		url  string
		body string
		want int
	}{
		{
			name: "empty user list",
			svc:  &fakeNotificationService{},
			url:  "/api/notification/festival_approval",
			body: `{"list_user_id": []}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed body",
			svc:  &fakeNotificationService{},
			url:  "/api/notification/festival_approval",
			body: `{broken`,
			want: http.StatusBadRequest,
		},
		{
			name: "unsupported type",
			svc:  &fakeNotificationService{createErr: service.ErrUnsupportedNotificationType},
			url:  "/api/notification/bogus_type",
			body: `{"list_user_id": [1]}`,
			want: http.StatusBadRequest,
		},
		{
			// Кривой payload шаблона — вина клиента, не сервера
			name: "non-object template data",
			svc:  &fakeNotificationService{createErr: service.ErrInvalidNotificationData},
			url:  "/api/notification/festival_approval",
			body: `{"data": "not an object", "list_user_id": [1]}`,
			want: http.StatusBadRequest,
		},
		{
			name: "storage failure is a server error",
			svc:  &fakeNotificationService{createErr: errors.New("db down")},
			url:  "/api/notification/festival_approval",
			body: `{"list_user_id": [1]}`,
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newNotificationRouter(t, tt.svc)

			req := httptest.NewRequest("POST", tt.url, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestGetNotifications(t *testing.T) {
	svc := &fakeNotificationService{
		notifications: []model.Notification{{ID: 1, UserID: 5}, {ID: 2, UserID: 5}},
		total:         12,
	}
	router := newNotificationRouter(t, svc)

	req := httptest.NewRequest("GET", "/api/notification?user_id=5&page=1&limit=2&is_read=false", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var page notificationsPage
	decodeSuccess(t, rr, &page)

	if len(page.Notifications) != 2 {
		t.Errorf("notifications = %d, want 2", len(page.Notifications))
	}
	if !page.Pagination.HasMore {
		t.Error("hasMore = false, want true with total 12 and page size 2")
	}
	if svc.lastIsRead == nil || *svc.lastIsRead {
		t.Error("is_read filter not passed down")
	}
}

func TestGetNotificationsRequiresUserID(t *testing.T) {
	router := newNotificationRouter(t, &fakeNotificationService{})

	req := httptest.NewRequest("GET", "/api/notification", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc := &fakeNotificationService{markReadErr: repository.ErrNotificationNotFound}
	router := newNotificationRouter(t, svc)

	req := httptest.NewRequest("PATCH", "/api/notification/7/read", strings.NewReader(`{"user_id": 5}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMarkAllRead(t *testing.T) {
	router := newNotificationRouter(t, &fakeNotificationService{affected: 4})

	req := httptest.NewRequest("PATCH", "/api/notification/read-all", strings.NewReader(`{"user_id": 5}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var data markAllReadData
	decodeSuccess(t, rr, &data)

	if data.Matched != 4 || data.Modified != 4 {
		t.Errorf("matched/modified = %d/%d, want 4/4", data.Matched, data.Modified)
	}
}

func TestClearAll(t *testing.T) {
	router := newNotificationRouter(t, &fakeNotificationService{affected: 9})

	req := httptest.NewRequest("DELETE", "/api/notification/clear", strings.NewReader(`{"user_id": 5}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var data map[string]int64
	decodeSuccess(t, rr, &data)

	if data["deleted"] != 9 {
		t.Errorf("deleted = %d, want 9", data["deleted"])
	}
}
