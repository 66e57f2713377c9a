package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client used as a fast-path cache in front of the
// attendance ledger. It is an optimization only: keys are written after a
// durable insert, so a hit always corresponds to an existing record, and any
// redis failure degrades to the authoritative Postgres path.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func markedKey(studentID, sessionID int64) string {
	return fmt.Sprintf("classtrack:marked:%d:%d", sessionID, studentID)
}

// IsMarked reports whether a (student, session) pair is known to be recorded.
// Errors are returned so the caller can fall through to the database.
func (r *Redis) IsMarked(ctx context.Context, studentID, sessionID int64) (bool, error) {
	if r == nil || r.Client == nil {
		return false, nil
	}
	n, err := r.Client.Exists(ctx, markedKey(studentID, sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RememberMarked caches a recorded (student, session) pair for ttl.
// Called only after the record is durably inserted.
func (r *Redis) RememberMarked(ctx context.Context, studentID, sessionID int64, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Set(ctx, markedKey(studentID, sessionID), 1, ttl).Err()
}
