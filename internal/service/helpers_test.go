package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := repo.New(gdb)
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func nullPrice(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// seedProduct stores a product; an empty price leaves that variant unsold.
func seedProduct(t *testing.T, r *repo.GormRepo, name, cutting, seedling string) models.Product {
	t.Helper()

	p := models.Product{Name: name, CuttingPrice: nullPrice(cutting), SeedlingPrice: nullPrice(seedling)}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

type sentEvent struct {
	Topic  string
	Key    string
	Event  any
	CtxErr error
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, sentEvent{Topic: topic, Key: key, Event: event, CtxErr: ctx.Err()})
	return p.err
}

func (p *recordingPublisher) types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Topic != topic {
			continue
		}
		if m, ok := e.Event.(map[string]any); ok {
			out = append(out, m["type"].(string))
		}
	}
	return out
}

// interleaveCreate runs fn once, on the same transaction, right before the
// next INSERT into table. It stands in for a concurrent request committing
// between a read and a write.
func interleaveCreate(t *testing.T, r *repo.GormRepo, table string, fn func(db *gorm.DB) error) {
	t.Helper()

	name := "test:interleave_" + table
	fired := false
	err := r.DB.Callback().Create().Before("gorm:create").Register(name, func(db *gorm.DB) {
		if fired || db.Statement.Table != table {
			return
		}
		fired = true
		if err := fn(db.Session(&gorm.Session{NewDB: true})); err != nil {
			_ = db.AddError(err)
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.DB.Callback().Create().Remove(name) })
}

type recordingNotifier struct {
	created int
	changed []models.OrderStatus
	err     error
}

func (n *recordingNotifier) OrderCreated(context.Context, *models.Order) error {
	n.created++
	return n.err
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o *models.Order, _ models.OrderStatus) error {
	n.changed = append(n.changed, o.Status)
	return n.err
}

var errNotifyDown = errors.New("smtp unavailable")

type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }
