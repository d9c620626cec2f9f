// Package turnlock provides a distributed per-guild lock so at most one
// process advances a tenant's turn at a time. It generalizes the
// teacher's in-process sync.Map of per-game mutexes to a Redis-backed
// SET NX PX lock so the orchestrator is safe to run from more than one
// CLI invocation or server replica against the same database.
package turnlock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by Acquire when another process already holds the
// lock for the guild.
var ErrHeld = errors.New("turnlock: lock held by another process")

const keyPrefix = "wargame:turnlock:"

// Locker acquires and releases the per-guild turn-advance lock.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Locker with the given lock TTL, a safety net against a
// crashed holder leaving the lock held forever.
func New(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Locker{rdb: rdb, ttl: ttl}
}

// Lease is a held lock; the caller must Release it when done.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire attempts to take the lock for guildID, returning ErrHeld if
// another process already holds it.
func (l *Locker) Acquire(ctx context.Context, guildID int64) (*Lease, error) {
	key := keyPrefix + strconv.FormatInt(guildID, 10)
	token := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("turnlock acquire: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

// releaseScript deletes the key only if it still holds our token, so a
// lease that outlives its TTL never releases a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// Release gives up the lease. Safe to call even if the TTL already expired.
func (lease *Lease) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, lease.locker.rdb, []string{lease.key}, lease.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("turnlock release: %w", err)
	}
	return nil
}

// Extend refreshes the TTL on a long-running turn advance, renewing the
// lease only if we still hold it.
func (lease *Lease) Extend(ctx context.Context, ttl time.Duration) error {
	set, err := lease.locker.rdb.Eval(ctx, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`, []string{lease.key}, lease.token, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("turnlock extend: %w", err)
	}
	if n, ok := set.(int64); ok && n == 0 {
		return ErrHeld
	}
	return nil
}
