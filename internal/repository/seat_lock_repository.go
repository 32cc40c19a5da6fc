package repository

import (
    "context"
    "fmt"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// releaseScript removes a hold only when the caller is the recorded holder.
// Return values: 1 released, -1 held by someone else, 0 no hold present.
// Running it as a single Lua script keeps the check-then-delete atomic.
var releaseScript = redis.NewScript(`
local holder = redis.call('HGET', KEYS[1], ARGV[1])
if holder == false then
    return 0
end
if holder ~= ARGV[2] then
    return -1
end
redis.call('HDEL', KEYS[1], ARGV[1])
return 1
`)

// SeatLockRepo is the ephemeral lock store for seat holds.  Each showtime
// owns one Redis hash mapping seat code to the holding user's id.  The hash
// carries a single idle TTL: any successful claim or release refreshes it,
// and a showtime whose viewers go quiet loses all of its holds at once when
// the window lapses.  Redis hashes give us the per-key atomicity the hold
// state machine relies on (HSETNX for test-and-set claims, a Lua script for
// holder-conditional deletes); no other process-local seat state exists.
type SeatLockRepo struct {
    rdb *redis.Client
    ttl time.Duration // idle expiry window per showtime, 300s unless configured
}

// NewSeatLockRepo returns a SeatLockRepo bound to the provided client.
func NewSeatLockRepo(rdb *redis.Client, ttl time.Duration) *SeatLockRepo {
    return &SeatLockRepo{rdb: rdb, ttl: ttl}
}

func holdKey(showtimeID uint64) string {
    return fmt.Sprintf("held_seats:%d", showtimeID)
}

// Claim attempts a first-writer-wins hold of a seat.  It returns the holder
// after the call: the caller's id on success, the existing holder's id with
// ErrSeatTaken on conflict.  A re-claim by the current holder is treated as
// idempotent success.  Transport failures surface as ErrStoreUnavailable so
// callers fail closed.
func (r *SeatLockRepo) Claim(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) (uint64, error) {
    key := holdKey(showtimeID)
    set, err := r.rdb.HSetNX(ctx, key, seatCode, strconv.FormatUint(userID, 10)).Result()
    if err != nil {
        return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
    }
    if !set {
        raw, err := r.rdb.HGet(ctx, key, seatCode).Result()
        if err == redis.Nil {
            // The competing hold expired between HSETNX and HGET; the next
            // claim attempt will win. Report the conflict as-is.
            return 0, ErrSeatTaken
        }
        if err != nil {
            return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
        }
        holder, convErr := strconv.ParseUint(raw, 10, 64)
        if convErr != nil {
            return 0, fmt.Errorf("%w: corrupt holder %q", ErrStoreUnavailable, raw)
        }
        if holder == userID {
            // Same user re-requesting its own hold: success, and still a
            // claim, so the idle window resets like any other.
            if err := r.refresh(ctx, key); err != nil {
                return 0, err
            }
            return userID, nil
        }
        return holder, ErrSeatTaken
    }
    if err := r.refresh(ctx, key); err != nil {
        return 0, err
    }
    return userID, nil
}

// Release removes the caller's hold on a seat.  Only the recorded holder may
// release; a foreign hold stays untouched and ErrNotHolder is returned, and
// an expired or never-held seat yields ErrHoldAbsent.
func (r *SeatLockRepo) Release(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) error {
    key := holdKey(showtimeID)
    res, err := releaseScript.Run(ctx, r.rdb, []string{key}, seatCode, strconv.FormatUint(userID, 10)).Int64()
    if err != nil {
        return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
    }
    switch res {
    case 1:
        return r.refresh(ctx, key)
    case -1:
        return ErrNotHolder
    default:
        return ErrHoldAbsent
    }
}

// Clear unconditionally drops the holds for the given seats.  It is used
// after a successful payment, where the payment outcome is authoritative and
// an already-expired hold must not block the commit.
func (r *SeatLockRepo) Clear(ctx context.Context, showtimeID uint64, seatCodes []string) error {
    if len(seatCodes) == 0 {
        return nil
    }
    if err := r.rdb.HDel(ctx, holdKey(showtimeID), seatCodes...).Err(); err != nil {
        return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
    }
    return nil
}

// Snapshot returns the current seat code -> holder mapping for a showtime.
// Joining viewers are bootstrapped from this before receiving live events.
func (r *SeatLockRepo) Snapshot(ctx context.Context, showtimeID uint64) (map[string]uint64, error) {
    raw, err := r.rdb.HGetAll(ctx, holdKey(showtimeID)).Result()
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
    }
    held := make(map[string]uint64, len(raw))
    for seat, value := range raw {
        holder, convErr := strconv.ParseUint(value, 10, 64)
        if convErr != nil {
            continue // skip corrupt entries rather than failing the snapshot
        }
        held[seat] = holder
    }
    return held, nil
}

// RefreshTTL resets the showtime's idle expiry window without mutating any
// hold. Continued activity in a showtime keeps its holds alive.
func (r *SeatLockRepo) RefreshTTL(ctx context.Context, showtimeID uint64) error {
    return r.refresh(ctx, holdKey(showtimeID))
}

func (r *SeatLockRepo) refresh(ctx context.Context, key string) error {
    if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
        return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
    }
    return nil
}
