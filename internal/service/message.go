package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"
)

// ErrAttachmentNotSaved сообщение записано, но вложение сохранить не удалось.
// Отката нет: сообщение остается в хранилище, ошибка уходит отправителю.
var ErrAttachmentNotSaved = errors.New("message saved but attachment was not")

// chatService реализация ChatService
type chatService struct {
	messageRepo repository.MessageRepository
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(messageRepo repository.MessageRepository) ChatService {
	return &chatService{messageRepo: messageRepo}
}

func (s *chatService) validateMessage(groupID, senderID uint, senderName, messageType, contentText string) error {
	if groupID == 0 {
		return errors.New("groupID cannot be zero")
	}

	if senderID == 0 {
		return errors.New("senderID cannot be zero")
	}

	if strings.TrimSpace(senderName) == "" {
		return errors.New("sender name cannot be empty")
	}

	if !model.ValidMessageType(messageType) || messageType == model.MessageTypeDeleted {
		return fmt.Errorf("unknown message type: %s", messageType)
	}

	if len(contentText) > model.MaxContentLength {
		return fmt.Errorf("message text exceeds %d characters", model.MaxContentLength)
	}

	return nil
}

// SendMessage сохраняет текстовое сообщение под идентичностью отправителя
func (s *chatService) SendMessage(ctx context.Context, groupID, senderID uint, senderName, messageType, contentText string) (*model.ChatMessage, error) {
	if messageType == "" {
		messageType = model.MessageTypeUserText
	}

	if err := s.validateMessage(groupID, senderID, senderName, messageType, contentText); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		GroupID:     groupID,
		SenderID:    senderID,
		SenderName:  strings.TrimSpace(senderName),
		MessageType: messageType,
		ContentText: contentText,
		Attachments: []model.ChatAttachment{},
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func validateAttachment(attachment AttachmentInput) error {
	if attachment.FileURL == "" {
		return errors.New("attachment fileUrl is required")
	}

	switch attachment.FileType {
	case model.FileTypeImage, model.FileTypeDocument:
	default:
		return fmt.Errorf("unknown file type: %s", attachment.FileType)
	}

	switch attachment.AttachmentType {
	case "", model.AttachmentTypeUserUpload, model.AttachmentTypeAIGenerated:
	default:
		return fmt.Errorf("unknown attachment type: %s", attachment.AttachmentType)
	}

	if attachment.FileSize < 0 || attachment.FileSize > model.MaxFileSize {
		return fmt.Errorf("attachment size must be between 0 and %d bytes", model.MaxFileSize)
	}

	return nil
}

// SendMessageWithAttachment сохраняет сообщение, затем вложение к нему.
// Если вложение записать не удалось, сообщение не откатывается:
// возвращаются сохраненное сообщение и ErrAttachmentNotSaved.
func (s *chatService) SendMessageWithAttachment(ctx context.Context, groupID, senderID uint, senderName, messageType, contentText string, attachment AttachmentInput) (*model.ChatMessage, error) {
	if messageType == "" {
		messageType = model.MessageTypeUserImage
	}

	if err := s.validateMessage(groupID, senderID, senderName, messageType, contentText); err != nil {
		return nil, err
	}

	if err := validateAttachment(attachment); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		GroupID:     groupID,
		SenderID:    senderID,
		SenderName:  strings.TrimSpace(senderName),
		MessageType: messageType,
		ContentText: contentText,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	attachmentType := attachment.AttachmentType
	if attachmentType == "" {
		attachmentType = model.AttachmentTypeUserUpload
	}

	doc := &model.ChatAttachment{
		MessageID:      msg.ID,
		AttachmentType: attachmentType,
		FileType:       attachment.FileType,
		FileName:       attachment.FileName,
		FileURL:        attachment.FileURL,
		FileSize:       attachment.FileSize,
	}

	if err := s.messageRepo.CreateAttachment(ctx, doc); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrAttachmentNotSaved, err)
	}

	msg.Attachments = []model.ChatAttachment{*doc}

	return msg, nil
}

// GetMessages возвращает страницу сообщений группы, новые первыми
func (s *chatService) GetMessages(ctx context.Context, groupID uint, page, limit int) ([]model.ChatMessage, error) {
	if groupID == 0 {
		return nil, errors.New("groupID cannot be zero")
	}

	if page <= 0 {
		page = 1
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	return s.messageRepo.GetByGroup(ctx, groupID, page, limit)
}

func (s *chatService) GetLatestMessage(ctx context.Context, groupID uint) (*model.ChatMessage, error) {
	if groupID == 0 {
		return nil, errors.New("groupID cannot be zero")
	}

	return s.messageRepo.GetLatestByGroup(ctx, groupID)
}

func (s *chatService) DeleteMessage(ctx context.Context, messageID, byUserID uint) (*model.ChatMessage, error) {
	if messageID == 0 || byUserID == 0 {
		return nil, errors.New("messageID and userID cannot be zero")
	}

	return s.messageRepo.MarkDeleted(ctx, messageID, byUserID)
}

func (s *chatService) GetGroupFiles(ctx context.Context, groupID uint, fileType string) ([]model.ChatMessage, error) {
	if groupID == 0 {
		return nil, errors.New("groupID cannot be zero")
	}

	return s.messageRepo.GetGroupFiles(ctx, groupID, fileType)
}

func (s *chatService) GetGroupStats(ctx context.Context, groupID uint) (*repository.GroupStats, error) {
	if groupID == 0 {
		return nil, errors.New("groupID cannot be zero")
	}

	return s.messageRepo.GetGroupStats(ctx, groupID)
}
