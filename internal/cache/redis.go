package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jazanyumba/chama-vault/internal/domain"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// OpenRedis connects and pings within five seconds.
func OpenRedis(addr, password string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Store keeps derived read models and reminder markers in redis.
type Store struct {
	rdb            *redis.Client
	leaderboardTTL time.Duration
}

func NewStore(rdb *redis.Client, leaderboardTTL time.Duration) *Store {
	if leaderboardTTL <= 0 {
		leaderboardTTL = 5 * time.Minute
	}
	return &Store{rdb: rdb, leaderboardTTL: leaderboardTTL}
}

func leaderboardKey(groupID uuid.UUID) string {
	return "chama:leaderboard:" + groupID.String()
}

func reminderKey(kind string, id uuid.UUID, day time.Time) string {
	return fmt.Sprintf("chama:reminder:%s:%s:%s", kind, id, day.Format("2006-01-02"))
}

// GetLeaderboard returns the cached leaderboard. A miss yields (nil, false, nil).
func (s *Store) GetLeaderboard(ctx context.Context, groupID uuid.UUID) ([]domain.LeaderboardEntry, bool, error) {
	raw, err := s.rdb.Get(ctx, leaderboardKey(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap(err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next set
		return nil, false, nil
	}
	return entries, true, nil
}

func (s *Store) SetLeaderboard(ctx context.Context, groupID uuid.UUID, entries []domain.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return wrap(s.rdb.Set(ctx, leaderboardKey(groupID), raw, s.leaderboardTTL).Err())
}

func (s *Store) InvalidateLeaderboard(ctx context.Context, groupID uuid.UUID) error {
	return wrap(s.rdb.Del(ctx, leaderboardKey(groupID)).Err())
}

// MarkReminded records that a reminder of kind went out for id on day.
// It returns false when one was already recorded, so callers send at most once a day.
func (s *Store) MarkReminded(ctx context.Context, kind string, id uuid.UUID, day time.Time) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, reminderKey(kind, id, day), 1, 36*time.Hour).Result()
	return ok, wrap(err)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return customError.WrapCacheError(err)
}
