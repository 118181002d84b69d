package service

import (
	"context"
	"testing"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.User{}, models.Instrument{},
		models.Trade{}, models.EntryPoint{}, models.ExitPoint{},
		models.Tag{}, models.TradingModel{},
		models.DailyJournal{}, models.P12Scenario{},
	))
	return db
}

func TestInstrumentCreateAndResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewInstrumentService(zap.NewNop(), newTestDB(t))

	created, err := svc.Create(ctx, InstrumentRequest{
		Symbol:     "nq",
		Name:       "E-mini Nasdaq-100",
		PointValue: 20,
		TickSize:   0.25,
	})
	require.NoError(t, err)
	assert.Equal(t, "NQ", created.Symbol)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.IsActive)

	// 按 ID 解析
	byID, err := svc.Resolve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	// 按代码解析，不区分大小写
	bySymbol, err := svc.Resolve(ctx, "nq")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySymbol.ID)

	_, err = svc.Resolve(ctx, "ES")
	assert.ErrorIs(t, err, xe.ErrInstrumentNotFound)
}

func TestInstrumentDuplicateSymbol(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewInstrumentService(zap.NewNop(), newTestDB(t))

	_, err := svc.Create(ctx, InstrumentRequest{Symbol: "ES", Name: "E-mini S&P 500", PointValue: 50})
	require.NoError(t, err)

	_, err = svc.Create(ctx, InstrumentRequest{Symbol: "es", Name: "Duplicate", PointValue: 50})
	assert.ErrorIs(t, err, xe.ErrInstrumentExists)
}

func TestInstrumentDeleteRefusedWhenReferenced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewInstrumentService(zap.NewNop(), db)
	tradeSvc := NewTradeService(zap.NewNop(), db, svc)

	instrument, err := svc.Create(ctx, InstrumentRequest{Symbol: "GC", Name: "Gold", PointValue: 100})
	require.NoError(t, err)

	_, err = tradeSvc.Create(ctx, "01USER", TradeRequest{
		Instrument: "GC",
		TradeDate:  "2025-06-02",
		Direction:  models.DirectionLong,
		Entries:    []FillRequest{{Time: "09:30", Contracts: 1, Price: 2400}},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, instrument.ID)
	assert.ErrorIs(t, err, xe.ErrInstrumentReferenced)

	// 停用仍然允许
	require.NoError(t, svc.SetActive(ctx, instrument.ID, false))
	got, err := svc.Get(ctx, instrument.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestInstrumentEnsureDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewInstrumentService(zap.NewNop(), newTestDB(t))

	require.NoError(t, svc.EnsureDefaults(ctx))
	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 6)

	// 幂等，二次调用不重复播种
	require.NoError(t, svc.EnsureDefaults(ctx))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 6)

	nq, err := svc.Resolve(ctx, "NQ")
	require.NoError(t, err)
	assert.Equal(t, 20.0, nq.PointValue)
}
