package redis

import (
	"context"
	"fmt"
	"time"
)

// SessionStore keeps a deny list of logged-out session ids until their token would expire anyway.
type SessionStore struct {
	client RedisClient
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(sessionID string) string {
	return fmt.Sprintf("session:revoked:%s", sessionID)
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(sessionID), "1", ttl)
}

func (s *SessionStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.client.Get(ctx, s.key(sessionID))
	if IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
