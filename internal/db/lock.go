package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Advisory is a held MySQL named lock. It pins one pooled connection until
// Release.
type Advisory struct {
	conn     *sql.Conn
	lockName string
}

// TryLock attempts GET_LOCK(name, 0). It returns (nil, nil) when another
// session holds the lock.
func (d *DB) TryLock(ctx context.Context, name string) (*Advisory, error) {
	c, err := d.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var got sql.NullInt64
	if err := c.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", name).Scan(&got); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("get lock %q: %w", name, err)
	}
	if !got.Valid || got.Int64 != 1 {
		_ = c.Close()
		return nil, nil
	}
	return &Advisory{conn: c, lockName: name}, nil
}

func (a *Advisory) Release() {
	if a == nil || a.conn == nil {
		return
	}
	_, _ = a.conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", a.lockName)
	_ = a.conn.Close()
}

// SweepLock adapts TryLock to sweeper.Locker under a fixed lock name.
type SweepLock struct {
	DB   *DB
	Name string
}

func (l SweepLock) Lock(ctx context.Context) (func(), bool, error) {
	a, err := l.DB.TryLock(ctx, l.Name)
	if err != nil || a == nil {
		return nil, false, err
	}
	return a.Release, true, nil
}
