package urlutil

import (
	"fmt"
	"path"
	"strings"

	"festapp/chat_backend/internal/model"
)

// ResolveFileURL приводит сохраненный URL файла к абсолютному виду.
// Абсолютные URL проходят без изменений, относительные переписываются
// на раздачу через /api/upload/files/<имя файла>. Операция идемпотентна.
func ResolveFileURL(baseURL, fileURL string) string {
	if fileURL == "" {
		return fileURL
	}

	if strings.HasPrefix(fileURL, "http://") || strings.HasPrefix(fileURL, "https://") {
		return fileURL
	}

	return fmt.Sprintf("%s/api/upload/files/%s", strings.TrimSuffix(baseURL, "/"), path.Base(fileURL))
}

// ResolveMessageURLs преобразует URL всех вложений сообщения
func ResolveMessageURLs(baseURL string, msg *model.ChatMessage) {
	for i := range msg.Attachments {
		msg.Attachments[i].FileURL = ResolveFileURL(baseURL, msg.Attachments[i].FileURL)
	}
}
