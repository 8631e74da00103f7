package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceRepository зеркало онлайн-присутствия в Redis. Источник истины о
// членстве в комнатах живет в процессе (hub), сюда пишется best-effort копия
// для статистики. На рестарте процесса состояние не восстанавливается.
type PresenceRepository interface {
	AddUserToGroup(ctx context.Context, groupID, userID uint) error
	RemoveUserFromGroup(ctx context.Context, groupID, userID uint) (int64, error)
	GetOnlineUsers(ctx context.Context, groupID uint) ([]uint, error)
	CountOnline(ctx context.Context, groupID uint) (int64, error)
}

type presenceRepository struct {
	rdb *redis.Client
}

// NewPresenceRepository создает новый экземпляр PresenceRepository
func NewPresenceRepository(rdb *redis.Client) PresenceRepository {
	return &presenceRepository{rdb: rdb}
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (r *presenceRepository) getGroupKey(groupID uint) string {
	return fmt.Sprintf("group:%d:users_online", groupID)
}

func (r *presenceRepository) AddUserToGroup(ctx context.Context, groupID, userID uint) error {
	key := r.getGroupKey(groupID)

	if err := r.rdb.SAdd(ctx, key, userID).Err(); err != nil {
		return fmt.Errorf("failed to add user to group presence: %w", err)
	}

	// TTL страхует от осиротевших ключей после падения процесса
	if err := r.rdb.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set presence TTL: %w", err)
	}

	return nil
}

// RemoveUserFromGroup убирает пользователя и возвращает, сколько осталось онлайн
func (r *presenceRepository) RemoveUserFromGroup(ctx context.Context, groupID, userID uint) (int64, error) {
	key := r.getGroupKey(groupID)

	if err := r.rdb.SRem(ctx, key, userID).Err(); err != nil {
		return 0, fmt.Errorf("failed to remove user from group presence: %w", err)
	}

	return r.rdb.SCard(ctx, key).Result()
}

func (r *presenceRepository) GetOnlineUsers(ctx context.Context, groupID uint) ([]uint, error) {
	values, err := r.rdb.SMembers(ctx, r.getGroupKey(groupID)).Result()
	if err != nil {
		if err == redis.Nil {
			return []uint{}, nil
		}
		return nil, fmt.Errorf("failed to get online users: %w", err)
	}

	users := make([]uint, 0, len(values))
	for _, v := range values {
		var id uint
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			users = append(users, id)
		}
	}

	return users, nil
}

func (r *presenceRepository) CountOnline(ctx context.Context, groupID uint) (int64, error) {
	count, err := r.rdb.SCard(ctx, r.getGroupKey(groupID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count online users: %w", err)
	}

	return count, nil
}
