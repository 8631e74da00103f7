package ws

import (
	"net/url"
	"testing"
)

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantErr    error
		wantUserID uint
		wantName   string
	}{
		{
			name:       "valid credentials",
			query:      "userId=42&senderName=Alice",
			wantUserID: 42,
			wantName:   "Alice",
		},
		{
			name:       "sender name is trimmed",
			query:      "userId=7&senderName=%20%20Bob%20%20",
			wantUserID: 7,
			wantName:   "Bob",
		},
		{
			name:    "missing user id",
			query:   "senderName=Alice",
			wantErr: ErrMissingUserID,
		},
		{
			name:    "missing sender name",
			query:   "userId=42",
			wantErr: ErrMissingSenderName,
		},
		{
			name:    "non-numeric user id",
			query:   "userId=abc&senderName=Alice",
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "negative user id",
			query:   "userId=-1&senderName=Alice",
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "whitespace-only sender name",
			query:   "userId=42&senderName=%20%20",
			wantErr: ErrInvalidSenderName,
		},
		{
			// Missing user id is checked before the bad sender name
			name:    "missing user id wins over bad name",
			query:   "senderName=%20",
			wantErr: ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}

			creds, err := ParseCredentials(query)
			if err != tt.wantErr {
				t.Fatalf("ParseCredentials() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if creds.UserID != tt.wantUserID {
				t.Errorf("UserID = %d, want %d", creds.UserID, tt.wantUserID)
			}
			if creds.SenderName != tt.wantName {
				t.Errorf("SenderName = %q, want %q", creds.SenderName, tt.wantName)
			}
		})
	}
}
