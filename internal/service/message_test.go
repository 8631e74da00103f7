package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"
)

type fakeMessageRepo struct {
	repository.MessageRepository

	createErr     error
	attachmentErr error

	created     []*model.ChatMessage
	attachments []*model.ChatAttachment

	lastPage  int
	lastLimit int
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	if f.createErr != nil {
		return f.createErr
	}

	msg.ID = uint(len(f.created) + 1)
	f.created = append(f.created, msg)

	return nil
}

func (f *fakeMessageRepo) CreateAttachment(ctx context.Context, attachment *model.ChatAttachment) error {
	if f.attachmentErr != nil {
		return f.attachmentErr
	}

	attachment.ID = uint(len(f.attachments) + 1)
	f.attachments = append(f.attachments, attachment)

	return nil
}

func (f *fakeMessageRepo) GetByGroup(ctx context.Context, groupID uint, page, limit int) ([]model.ChatMessage, error) {
	f.lastPage = page
	f.lastLimit = limit
	return nil, nil
}

func TestSendMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)

	msg, err := svc.SendMessage(context.Background(), 10, 1, "  Alice  ", "", "hello")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if msg.MessageType != model.MessageTypeUserText {
		t.Errorf("messageType = %q, want %q", msg.MessageType, model.MessageTypeUserText)
	}
	if msg.SenderName != "Alice" {
		t.Errorf("senderName = %q, want trimmed %q", msg.SenderName, "Alice")
	}
	if len(repo.created) != 1 {
		t.Errorf("created %d messages, want 1", len(repo.created))
	}
}

func TestSendMessageValidation(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)
	ctx := context.Background()

	tests := []struct {
		name        string
		groupID     uint
		senderID    uint
		senderName  string
		messageType string
		contentText string
	}{
		{"zero group", 0, 1, "Alice", "user_text", "hi"},
		{"zero sender", 10, 0, "Alice", "user_text", "hi"},
		{"blank sender name", 10, 1, "   ", "user_text", "hi"},
		{"unknown type", 10, 1, "Alice", "bogus", "hi"},
		{"deleted is not an input type", 10, 1, "Alice", model.MessageTypeDeleted, "hi"},
		{"oversized text", 10, 1, "Alice", "user_text", strings.Repeat("a", model.MaxContentLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, tt.groupID, tt.senderID, tt.senderName, tt.messageType, tt.contentText)
			if err == nil {
				t.Error("SendMessage() expected validation error, got nil")
			}
		})
	}

	// Nothing reaches the repository on validation failure
	if len(repo.created) != 0 {
		t.Errorf("created %d messages, want 0", len(repo.created))
	}
}

func TestSendMessageWithAttachment(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)

	msg, err := svc.SendMessageWithAttachment(context.Background(), 10, 1, "Alice", "", "", AttachmentInput{
		FileType: model.FileTypeImage,
		FileName: "photo.png",
		FileURL:  "/uploads/photo.png",
		FileSize: 1024,
	})
	if err != nil {
		t.Fatalf("SendMessageWithAttachment() error = %v", err)
	}

	if msg.MessageType != model.MessageTypeUserImage {
		t.Errorf("messageType = %q, want %q", msg.MessageType, model.MessageTypeUserImage)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	if msg.Attachments[0].AttachmentType != model.AttachmentTypeUserUpload {
		t.Errorf("attachmentType = %q, want default %q", msg.Attachments[0].AttachmentType, model.AttachmentTypeUserUpload)
	}
	if msg.Attachments[0].MessageID != msg.ID {
		t.Errorf("attachment messageID = %d, want %d", msg.Attachments[0].MessageID, msg.ID)
	}
}

func TestSendMessageWithAttachmentValidation(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{})
	ctx := context.Background()

	tests := []struct {
		name       string
		attachment AttachmentInput
	}{
		{"missing fileUrl", AttachmentInput{FileType: model.FileTypeImage}},
		{"unknown file type", AttachmentInput{FileURL: "/a", FileType: "video"}},
		{"unknown attachment type", AttachmentInput{FileURL: "/a", FileType: model.FileTypeImage, AttachmentType: "weird"}},
		{"negative size", AttachmentInput{FileURL: "/a", FileType: model.FileTypeImage, FileSize: -1}},
		{"oversized file", AttachmentInput{FileURL: "/a", FileType: model.FileTypeImage, FileSize: model.MaxFileSize + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessageWithAttachment(ctx, 10, 1, "Alice", "", "", tt.attachment)
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSendMessageWithAttachmentPartialFailure(t *testing.T) {
	repo := &fakeMessageRepo{attachmentErr: errors.New("disk full")}
	svc := NewChatService(repo)

	msg, err := svc.SendMessageWithAttachment(context.Background(), 10, 1, "Alice", "", "", AttachmentInput{
		FileType: model.FileTypeImage,
		FileURL:  "/uploads/photo.png",
	})

	if !errors.Is(err, ErrAttachmentNotSaved) {
		t.Fatalf("error = %v, want ErrAttachmentNotSaved", err)
	}
	// The message itself stays persisted, no rollback
	if msg == nil {
		t.Fatal("expected the saved message alongside the error")
	}
	if len(repo.created) != 1 {
		t.Errorf("created %d messages, want 1", len(repo.created))
	}
}

func TestGetMessagesClampsPagination(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)
	ctx := context.Background()

	if _, err := svc.GetMessages(ctx, 10, -5, 0); err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if repo.lastPage != 1 || repo.lastLimit != 50 {
		t.Errorf("page/limit = %d/%d, want 1/50", repo.lastPage, repo.lastLimit)
	}

	if _, err := svc.GetMessages(ctx, 10, 2, 500); err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if repo.lastPage != 2 || repo.lastLimit != 100 {
		t.Errorf("page/limit = %d/%d, want 2/100", repo.lastPage, repo.lastLimit)
	}

	if _, err := svc.GetMessages(ctx, 0, 1, 50); err == nil {
		t.Error("GetMessages() with zero group expected error")
	}
}
