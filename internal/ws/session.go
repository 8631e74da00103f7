package ws

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Ошибки допуска. Любая из них отклоняет соединение до того, как оно станет
// видно комнатам и рассылке.
var (
	ErrMissingUserID     = errors.New("user ID is required")
	ErrMissingSenderName = errors.New("sender name is required")
	ErrInvalidUserID     = errors.New("invalid user ID format")
	ErrInvalidSenderName = errors.New("invalid sender name")
)

// Credentials идентичность, привязываемая к соединению при допуске
type Credentials struct {
	UserID     uint
	SenderName string
}

// ParseCredentials проверяет реквизиты рукопожатия в фиксированном порядке,
// первая ошибка выигрывает. Имя отправителя сохраняется без крайних пробелов.
func ParseCredentials(query url.Values) (Credentials, error) {
	rawUserID := query.Get("userId")
	rawSenderName := query.Get("senderName")

	if rawUserID == "" {
		return Credentials{}, ErrMissingUserID
	}

	if rawSenderName == "" {
		return Credentials{}, ErrMissingSenderName
	}

	userID, err := strconv.ParseUint(rawUserID, 10, 32)
	if err != nil {
		return Credentials{}, ErrInvalidUserID
	}

	senderName := strings.TrimSpace(rawSenderName)
	if senderName == "" {
		return Credentials{}, ErrInvalidSenderName
	}

	return Credentials{
		UserID:     uint(userID),
		SenderName: senderName,
	}, nil
}
