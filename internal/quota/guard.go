package quota

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrStorage marks record store failures. Callers must not confuse it with
// "no record yet": treating a storage outage as an empty counter would
// silently reset quotas.
var ErrStorage = errors.New("quota: storage failure")

var errSlotContention = errors.New("could not settle counter row")

// Guard admits or rejects requests against a per-identity daily counter.
type Guard struct {
	db    *gorm.DB
	limit int
}

func NewGuard(db *gorm.DB, limit int) *Guard {
	if limit <= 0 {
		limit = 10
	}
	return &Guard{db: db, limit: limit}
}

func (g *Guard) Limit() int { return g.limit }

// Decision is the outcome of CheckAndReserve. CountBefore is the counter
// value before this request's increment and feeds the "remaining" math.
type Decision struct {
	Admitted    bool
	CountBefore int
}

// CheckAndReserve atomically consumes one daily slot for (identity, day).
// The increment is a single conditional UPDATE guarded by count < limit, so
// two concurrent requests can never both take the last slot. When no row
// exists yet an INSERT with count=1 races against concurrent inserts; losing
// that race falls back to the increment path.
func (g *Guard) CheckAndReserve(ctx context.Context, identity, day string) (Decision, error) {
	for attempt := 0; attempt < 3; attempt++ {
		res := g.db.WithContext(ctx).Model(&Record{}).
			Where("identity = ? AND day = ? AND count < ?", identity, day, g.limit).
			Update("count", gorm.Expr("count + 1"))
		if res.Error != nil {
			return Decision{}, fmt.Errorf("%w: reserve: %v", ErrStorage, res.Error)
		}
		if res.RowsAffected > 0 {
			var rec Record
			if err := g.db.WithContext(ctx).
				Where("identity = ? AND day = ?", identity, day).
				First(&rec).Error; err != nil {
				return Decision{}, fmt.Errorf("%w: reserve readback: %v", ErrStorage, err)
			}
			return Decision{Admitted: true, CountBefore: rec.Count - 1}, nil
		}

		// Nothing updated: either no row yet, or the limit is reached.
		count, err := g.Peek(ctx, identity, day)
		if err != nil {
			return Decision{}, err
		}
		if count >= g.limit {
			return Decision{Admitted: false, CountBefore: count}, nil
		}

		err = g.db.WithContext(ctx).Create(&Record{Identity: identity, Day: day, Count: 1}).Error
		if err == nil {
			return Decision{Admitted: true, CountBefore: 0}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return Decision{}, fmt.Errorf("%w: reserve insert: %v", ErrStorage, err)
		}
		// Lost the insert race; a concurrent request created the row. Retry
		// the increment against it.
	}
	return Decision{}, fmt.Errorf("%w: reserve: %v", ErrStorage, errSlotContention)
}

// Peek returns the current count for (identity, day); 0 when no record exists.
func (g *Guard) Peek(ctx context.Context, identity, day string) (int, error) {
	var rec Record
	err := g.db.WithContext(ctx).
		Where("identity = ? AND day = ?", identity, day).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: peek: %v", ErrStorage, err)
	}
	return rec.Count, nil
}

// Release gives one reserved slot back, never dropping the counter below zero.
// Used only when the refund-on-upstream-failure policy is enabled.
func (g *Guard) Release(ctx context.Context, identity, day string) error {
	err := g.db.WithContext(ctx).Model(&Record{}).
		Where("identity = ? AND day = ? AND count > 0", identity, day).
		Update("count", gorm.Expr("count - 1")).Error
	if err != nil {
		return fmt.Errorf("%w: release: %v", ErrStorage, err)
	}
	return nil
}

// ResetAll deletes every counter row. Meant for the daily scheduled reset,
// not for per-identity cleanup.
func (g *Guard) ResetAll(ctx context.Context) error {
	err := g.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("%w: reset: %v", ErrStorage, err)
	}
	return nil
}
