package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// ResetTokenStore keeps hashed password reset tokens with a TTL. Each user
// has at most one live token; issuing a new one revokes the previous.
type ResetTokenStore struct {
	client *redisclient.Client
}

func NewResetTokenStore(client *redisclient.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func tokenKey(tokenHash string) string {
	return fmt.Sprintf("reset:token:%s", tokenHash)
}

func userKey(userID string) string {
	return fmt.Sprintf("reset:user:%s", userID)
}

func (s *ResetTokenStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	previous, err := s.client.Get(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redisclient.Nil) {
		return global.Upstream("read reset token", err)
	}

	pipe := s.client.TxPipeline()
	if previous != "" {
		pipe.Del(ctx, tokenKey(previous))
	}
	pipe.Set(ctx, tokenKey(tokenHash), userID, ttl)
	pipe.Set(ctx, userKey(userID), tokenHash, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return global.Upstream("save reset token", err)
	}
	return nil
}

// Consume atomically reads and deletes the token, returning its user id.
func (s *ResetTokenStore) Consume(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.GetDel(ctx, tokenKey(tokenHash)).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", global.InvalidArgument("token", "Token is invalid or expired")
	}
	if err != nil {
		return "", global.Upstream("consume reset token", err)
	}
	s.client.Del(ctx, userKey(userID))
	return userID, nil
}
