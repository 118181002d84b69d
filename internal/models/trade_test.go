package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func clock(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	require.NoError(t, err)
	return parsed
}

func newTestTrade(t *testing.T, direction string, pointValue float64) *Trade {
	t.Helper()
	return &Trade{
		ID:         "01TEST",
		UserID:     "01USER",
		Direction:  direction,
		TradeDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Instrument: &Instrument{ID: "01INST", Symbol: "NQ", PointValue: pointValue},
	}
}

func TestTradeAveragesAndTotals(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.Entries = []EntryPoint{
		{EntryTime: clock(t, "09:30"), Contracts: 2, Price: 15000},
		{EntryTime: clock(t, "09:45"), Contracts: 1, Price: 15030},
	}
	trade.Exits = []ExitPoint{
		{ExitTime: clock(t, "10:15"), Contracts: 3, Price: 15050},
	}

	assert.Equal(t, 3, trade.TotalEntered())
	assert.Equal(t, 3, trade.TotalExited())

	avgEntry, ok := trade.AverageEntryPrice()
	require.True(t, ok)
	assert.InDelta(t, 15010, avgEntry, 1e-9)

	avgExit, ok := trade.AverageExitPrice()
	require.True(t, ok)
	assert.InDelta(t, 15050, avgExit, 1e-9)

	assert.False(t, trade.IsOpen())
}

func TestGrossPnlLongSingleFill(t *testing.T) {
	t.Parallel()

	// NQ 点值 20，1 手 15000 进 15010 出
	trade := newTestTrade(t, DirectionLong, 20)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 15000}}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "10:00"), Contracts: 1, Price: 15010}}

	assert.InDelta(t, 200, trade.GrossPnl(), 1e-9)
}

func TestGrossPnlShortScaledExit(t *testing.T) {
	t.Parallel()

	// ES 点值 50，2 手 4500 进，分批 4495/4490 出
	trade := newTestTrade(t, DirectionShort, 50)
	trade.Instrument.Symbol = "ES"
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 2, Price: 4500}}
	trade.Exits = []ExitPoint{
		{ExitTime: clock(t, "10:00"), Contracts: 1, Price: 4495},
		{ExitTime: clock(t, "10:30"), Contracts: 1, Price: 4490},
	}

	avgExit, ok := trade.AverageExitPrice()
	require.True(t, ok)
	assert.InDelta(t, 4492.5, avgExit, 1e-9)
	assert.InDelta(t, 750, trade.GrossPnl(), 1e-9)
}

func TestGrossPnlMissingPointValue(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 0)
	trade.Instrument = nil
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 100}}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "10:00"), Contracts: 1, Price: 110}}

	assert.Nil(t, trade.PointValueSafe())
	assert.Zero(t, trade.GrossPnl())

	// 查询钩子会把点值缺失标注到载荷上
	require.NoError(t, trade.AfterFind(nil))
	assert.True(t, trade.MissingPointValue)

	withPv := newTestTrade(t, DirectionLong, 20)
	require.NoError(t, withPv.AfterFind(nil))
	assert.False(t, withPv.MissingPointValue)
}

func TestPointValueOverridePrecedence(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.PointValue = ptr(5.0)

	pv := trade.PointValueSafe()
	require.NotNil(t, pv)
	assert.Equal(t, 5.0, *pv)

	trade.PointValue = nil
	pv = trade.PointValueSafe()
	require.NotNil(t, pv)
	assert.Equal(t, 20.0, *pv)
}

func TestPartialExitLaw(t *testing.T) {
	t.Parallel()

	// 3 手进场只平 2 手，盈亏只按已平手数计；剩余以同均价平掉后两段之和等于全平
	partial := newTestTrade(t, DirectionLong, 10)
	partial.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 3, Price: 100}}
	partial.Exits = []ExitPoint{{ExitTime: clock(t, "10:00"), Contracts: 2, Price: 105}}

	assert.True(t, partial.IsOpen())
	assert.InDelta(t, 100, partial.GrossPnl(), 1e-9) // 5 点 × 2 手 × 10

	full := newTestTrade(t, DirectionLong, 10)
	full.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 3, Price: 100}}
	full.Exits = []ExitPoint{
		{ExitTime: clock(t, "10:00"), Contracts: 2, Price: 105},
		{ExitTime: clock(t, "10:30"), Contracts: 1, Price: 105},
	}
	remainder := 105.0 - 100.0 // 每手 5 点

	assert.InDelta(t, partial.GrossPnl()+remainder*1*10, full.GrossPnl(), 1e-9)
}

func TestCalculateAndStorePnlIdempotent(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 15000}}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "10:00"), Contracts: 1, Price: 15010}}

	first := trade.CalculateAndStorePnl()
	second := trade.CalculateAndStorePnl()
	assert.Equal(t, first, second)
	require.NotNil(t, trade.Pnl)
	assert.InDelta(t, 200, *trade.Pnl, 1e-9)
}

func TestDollarRiskAndPnlInR(t *testing.T) {
	t.Parallel()

	// 进场 100 止损 95，2 手点值 10：风险 100；110 出场盈亏 200 即 2R
	trade := newTestTrade(t, DirectionLong, 10)
	trade.InitialStopLoss = ptr(95.0)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 2, Price: 100}}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "11:00"), Contracts: 2, Price: 110}}

	risk := trade.DollarRisk()
	require.NotNil(t, risk)
	assert.InDelta(t, 100, *risk, 1e-9)
	assert.InDelta(t, 200, trade.GrossPnl(), 1e-9)

	r := trade.PnlInR()
	require.NotNil(t, r)
	assert.InDelta(t, 2.0, *r, 1e-9)

	trade.TerminusTarget = ptr(115.0)
	rr := trade.RiskRewardRatio()
	require.NotNil(t, rr)
	assert.InDelta(t, 3.0, *rr, 1e-9)
}

func TestDollarRiskStopNotAdverse(t *testing.T) {
	t.Parallel()

	// 多头止损在进场价上方：风险记 0，R 无定义
	trade := newTestTrade(t, DirectionLong, 10)
	trade.InitialStopLoss = ptr(105.0)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 100}}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "10:00"), Contracts: 1, Price: 110}}

	risk := trade.DollarRisk()
	require.NotNil(t, risk)
	assert.Zero(t, *risk)
	assert.Nil(t, trade.PnlInR())
}

func TestOpenTradeDerivedValues(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.InitialStopLoss = ptr(14950.0)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 15000}}

	assert.True(t, trade.IsOpen())
	assert.Zero(t, trade.GrossPnl())
	assert.Nil(t, trade.PnlInR())
	assert.Equal(t, "Open", trade.TimeInTradeDisplay())
}

func TestTimeInTrade(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.Entries = []EntryPoint{
		{EntryTime: clock(t, "09:45"), Contracts: 1, Price: 15000},
		{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 15010},
	}
	trade.Exits = []ExitPoint{{ExitTime: clock(t, "11:15"), Contracts: 2, Price: 15020}}

	// 最早进场 09:30，最晚出场 11:15
	d, ok := trade.TimeInTrade()
	require.True(t, ok)
	assert.Equal(t, 105*time.Minute, d)
	assert.Equal(t, "01h 45m", trade.TimeInTradeDisplay())
}

func TestRiskRewardRatioUndefined(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, DirectionLong, 20)
	trade.Entries = []EntryPoint{{EntryTime: clock(t, "09:30"), Contracts: 1, Price: 100}}

	// 缺止损或目标价时无定义
	assert.Nil(t, trade.RiskRewardRatio())

	trade.InitialStopLoss = ptr(100.0) // 止损与均价重合
	trade.TerminusTarget = ptr(110.0)
	assert.Nil(t, trade.RiskRewardRatio())
}
