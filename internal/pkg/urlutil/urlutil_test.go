package urlutil

import (
	"testing"

	"festapp/chat_backend/internal/model"
)

func TestResolveFileURL(t *testing.T) {
	base := "http://localhost:8080"

	tests := []struct {
		name    string
		baseURL string
		fileURL string
		want    string
	}{
		{
			name:    "relative path is rewritten",
			baseURL: base,
			fileURL: "/uploads/photo.png",
			want:    "http://localhost:8080/api/upload/files/photo.png",
		},
		{
			name:    "bare filename is rewritten",
			baseURL: base,
			fileURL: "photo.png",
			want:    "http://localhost:8080/api/upload/files/photo.png",
		},
		{
			name:    "nested path keeps only the basename",
			baseURL: base,
			fileURL: "uploads/2026/08/photo.png",
			want:    "http://localhost:8080/api/upload/files/photo.png",
		},
		{
			name:    "absolute http url passes through",
			baseURL: base,
			fileURL: "http://cdn.example.com/photo.png",
			want:    "http://cdn.example.com/photo.png",
		},
		{
			name:    "absolute https url passes through",
			baseURL: base,
			fileURL: "https://cdn.example.com/photo.png",
			want:    "https://cdn.example.com/photo.png",
		},
		{
			name:    "empty url stays empty",
			baseURL: base,
			fileURL: "",
			want:    "",
		},
		{
			name:    "trailing slash on base is trimmed",
			baseURL: "http://localhost:8080/",
			fileURL: "photo.png",
			want:    "http://localhost:8080/api/upload/files/photo.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFileURL(tt.baseURL, tt.fileURL)
			if got != tt.want {
				t.Errorf("ResolveFileURL(%q, %q) = %q, want %q", tt.baseURL, tt.fileURL, got, tt.want)
			}

			// Resolving twice must not rewrite again
			if again := ResolveFileURL(tt.baseURL, got); again != got {
				t.Errorf("second resolve changed %q to %q", got, again)
			}
		})
	}
}

func TestResolveMessageURLs(t *testing.T) {
	msg := &model.ChatMessage{
		Attachments: []model.ChatAttachment{
			{FileURL: "/uploads/a.png"},
			{FileURL: "https://cdn.example.com/b.pdf"},
		},
	}

	ResolveMessageURLs("http://localhost:8080", msg)

	if got := msg.Attachments[0].FileURL; got != "http://localhost:8080/api/upload/files/a.png" {
		t.Errorf("first attachment = %q", got)
	}
	if got := msg.Attachments[1].FileURL; got != "https://cdn.example.com/b.pdf" {
		t.Errorf("second attachment = %q, want unchanged", got)
	}
}
