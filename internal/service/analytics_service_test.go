package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAnalyticsService() *AnalyticsService {
	return &AnalyticsService{
		logger: zap.NewNop(),
		conf: config.AnalyticsConf{
			RiskPerTrade: 50,
			AccountSize:  10000,
			EquityPoints: 500,
		},
	}
}

// closedTrade 构造一笔指定盈亏的已平仓交易：点值 1、1 手、0 进 pnl 出
func closedTrade(id string, date time.Time, pnl float64) models.Trade {
	pv := 1.0
	direction := models.DirectionLong
	exitPrice := pnl
	if pnl < 0 {
		direction = models.DirectionShort
		exitPrice = -pnl
	}
	return models.Trade{
		ID:         id,
		TradeDate:  date,
		Direction:  direction,
		PointValue: &pv,
		Entries:    []models.EntryPoint{{Contracts: 1, Price: 0}},
		Exits:      []models.ExitPoint{{Contracts: 1, Price: exitPrice}},
	}
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeEmptyInput(t *testing.T) {
	t.Parallel()

	a := testAnalyticsService().compute(nil)
	assert.Zero(t, a.TotalTrades)
	assert.Zero(t, a.TotalPnl)
	assert.Zero(t, a.WinRate)
	assert.Zero(t, a.ProfitFactor)
	assert.Zero(t, a.Sqn)
	assert.Zero(t, a.MaxDrawdown)
	assert.Empty(t, a.EquityCurve)
	assert.Empty(t, a.Daily)
	assert.Empty(t, a.DrawdownPeriods)
}

func TestComputeOpenTradesExcluded(t *testing.T) {
	t.Parallel()

	pv := 1.0
	open := models.Trade{
		ID:         "open",
		TradeDate:  day(1),
		Direction:  models.DirectionLong,
		PointValue: &pv,
		Entries:    []models.EntryPoint{{Contracts: 1, Price: 100}},
	}
	a := testAnalyticsService().compute([]models.Trade{open, closedTrade("c1", day(2), 100)})
	assert.Equal(t, 1, a.TotalTrades)
	assert.InDelta(t, 100, a.TotalPnl, 1e-9)
}

func TestComputeThreeTradeSequence(t *testing.T) {
	t.Parallel()

	// [+100, -50, +25]，risk_per_trade=50 account_size=10000
	trades := []models.Trade{
		closedTrade("t1", day(2), 100),
		closedTrade("t2", day(3), -50),
		closedTrade("t3", day(4), 25),
	}
	a := testAnalyticsService().compute(trades)

	assert.Equal(t, 3, a.TotalTrades)
	assert.Equal(t, 2, a.Winners)
	assert.Equal(t, 1, a.Losers)
	assert.InDelta(t, 75, a.TotalPnl, 1e-9)
	assert.InDelta(t, 100.0/1.5, a.WinRate, 0.1) // 66.7%
	assert.InDelta(t, 62.5, a.AvgWin, 1e-9)
	assert.InDelta(t, 50, a.AvgLoss, 1e-9)
	assert.InDelta(t, 2.5, float64(a.ProfitFactor), 1e-9)
	assert.InDelta(t, 25, a.ExpectancyDollars, 1e-9)
	assert.InDelta(t, 1.5, a.TotalR, 1e-9)

	require.Len(t, a.EquityCurve, 3)
	assert.InDelta(t, 100, a.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 50, a.EquityCurve[1].Equity, 1e-9)
	assert.InDelta(t, 75, a.EquityCurve[2].Equity, 1e-9)
	assert.InDelta(t, 50, a.MaxDrawdown, 1e-9)
}

func TestProfitFactorBoundaries(t *testing.T) {
	t.Parallel()

	svc := testAnalyticsService()

	// 无亏损且有盈利：+Inf
	a := svc.compute([]models.Trade{closedTrade("t1", day(1), 200)})
	assert.True(t, math.IsInf(float64(a.ProfitFactor), 1))
	assert.InDelta(t, 100, a.WinRate, 1e-9)
	assert.Zero(t, a.MaxDrawdown)

	// 全部保本：0
	a = svc.compute([]models.Trade{closedTrade("t1", day(1), 0)})
	assert.Zero(t, a.ProfitFactor)
	assert.Equal(t, 1, a.Breakevens)
}

func TestStreaksBreakevenTerminates(t *testing.T) {
	t.Parallel()

	// +,+,0,+,-,-,-：最长连胜 2（保本终结且不延续），最长连亏 3
	trades := []models.Trade{
		closedTrade("t1", day(1), 10),
		closedTrade("t2", day(2), 10),
		closedTrade("t3", day(3), 0),
		closedTrade("t4", day(4), 10),
		closedTrade("t5", day(5), -10),
		closedTrade("t6", day(6), -10),
		closedTrade("t7", day(7), -10),
	}
	a := testAnalyticsService().compute(trades)
	assert.Equal(t, 2, a.MaxConsecutiveWins)
	assert.Equal(t, 3, a.MaxConsecutiveLosses)
}

func TestSameDayPermutationInvariance(t *testing.T) {
	t.Parallel()

	svc := testAnalyticsService()
	forward := []models.Trade{
		closedTrade("t1", day(5), 30),
		closedTrade("t2", day(5), -10),
	}
	reversed := []models.Trade{
		closedTrade("t2", day(5), -10),
		closedTrade("t1", day(5), 30),
	}

	a := svc.compute(forward)
	b := svc.compute(reversed)

	assert.Equal(t, a.TotalTrades, b.TotalTrades)
	assert.InDelta(t, a.TotalPnl, b.TotalPnl, 1e-9)
	assert.InDelta(t, a.WinRate, b.WinRate, 1e-9)
	assert.InDelta(t, float64(a.ProfitFactor), float64(b.ProfitFactor), 1e-9)

	// 日终权益一致
	require.Len(t, a.Daily, 1)
	require.Len(t, b.Daily, 1)
	assert.InDelta(t, 20, a.Daily[0].Pnl, 1e-9)
	assert.InDelta(t, a.Daily[0].Pnl, b.Daily[0].Pnl, 1e-9)
}

func TestSqnBoundaries(t *testing.T) {
	t.Parallel()

	svc := testAnalyticsService()

	// 单笔样本：波动为 0，SQN = 0 且不报错
	a := svc.compute([]models.Trade{closedTrade("t1", day(1), 100)})
	assert.Zero(t, a.Sqn)
	assert.Zero(t, a.Sqn100)

	// 同值序列：stdev = 0
	a = svc.compute([]models.Trade{
		closedTrade("t1", day(1), 50),
		closedTrade("t2", day(2), 50),
	})
	assert.Zero(t, a.Sqn)
}

func TestDrawdownTrailingPeriod(t *testing.T) {
	t.Parallel()

	// 峰值后持续回撤且未恢复：末段计入回撤区间且标记未恢复
	trades := []models.Trade{
		closedTrade("t1", day(1), 100),
		closedTrade("t2", day(3), -30),
		closedTrade("t3", day(5), -20),
	}
	a := testAnalyticsService().compute(trades)

	assert.InDelta(t, 50, a.MaxDrawdown, 1e-9)
	assert.InDelta(t, 50, a.CurrentDrawdown, 1e-9)
	require.Len(t, a.DrawdownPeriods, 1)
	dd := a.DrawdownPeriods[0]
	assert.False(t, dd.Recovered)
	assert.Equal(t, "2025-06-01", dd.StartDate)
	assert.Equal(t, "2025-06-05", dd.EndDate)
	// 回撤持续时长按低于峰值的交易笔数计，不按日历天数
	assert.Equal(t, 2, dd.DurationTrades)
	assert.Equal(t, 2, a.MaxDrawdownDuration)

	// 逐笔回撤样本 [30, 50]，只取大于 0 的
	assert.InDelta(t, 40, a.MedianDrawdown, 1e-9)
	assert.InDelta(t, 40, a.AvgDrawdown, 1e-9)
}

func TestDrawdownRecovery(t *testing.T) {
	t.Parallel()

	trades := []models.Trade{
		closedTrade("t1", day(1), 100),
		closedTrade("t2", day(2), -50),
		closedTrade("t3", day(4), 80),
	}
	a := testAnalyticsService().compute(trades)

	assert.InDelta(t, 50, a.MaxDrawdown, 1e-9)
	assert.Zero(t, a.CurrentDrawdown)
	require.Len(t, a.DrawdownPeriods, 1)
	assert.True(t, a.DrawdownPeriods[0].Recovered)
	assert.Equal(t, 1, a.DrawdownPeriods[0].DurationTrades)
}

func TestKellyPercent(t *testing.T) {
	t.Parallel()

	// 胜率 50%，均盈 100 均亏 50：Kelly = (0.5*100 - 0.5*50)/100 = 25%
	trades := []models.Trade{
		closedTrade("t1", day(1), 100),
		closedTrade("t2", day(2), -50),
	}
	a := testAnalyticsService().compute(trades)
	assert.InDelta(t, 25, a.KellyPercent, 1e-9)
}

func TestKellyPercentBoundaries(t *testing.T) {
	t.Parallel()

	svc := testAnalyticsService()

	// 全部盈利：没有亏损样本，Kelly = 0
	a := svc.compute([]models.Trade{
		closedTrade("t1", day(1), 100),
		closedTrade("t2", day(2), 200),
	})
	assert.Zero(t, a.KellyPercent)

	// 全部亏损：胜率为 0，Kelly = 0
	a = svc.compute([]models.Trade{
		closedTrade("t1", day(1), -100),
		closedTrade("t2", day(2), -200),
	})
	assert.Zero(t, a.KellyPercent)
}

func TestByModelRollup(t *testing.T) {
	t.Parallel()

	withModel := closedTrade("t1", day(1), 100)
	withModel.TradingModel = &models.TradingModel{Name: "Breakout"}
	noModel := closedTrade("t2", day(2), -50)

	a := testAnalyticsService().compute([]models.Trade{withModel, noModel})

	require.Contains(t, a.ByModel, "Breakout")
	require.Contains(t, a.ByModel, "Unknown")
	assert.Equal(t, 1, a.ByModel["Breakout"].Trades)
	assert.InDelta(t, 100, a.ByModel["Breakout"].Pnl, 1e-9)
	assert.InDelta(t, -50, a.ByModel["Unknown"].Pnl, 1e-9)
}

func TestEquityCurveDecimation(t *testing.T) {
	t.Parallel()

	points := make([]EquityPoint, 1000)
	for i := range points {
		points[i] = EquityPoint{Date: "2025-06-01", Equity: float64(i)}
	}
	out := decimate(points, 100)
	assert.LessOrEqual(t, len(out), 101)
	assert.Equal(t, points[len(points)-1], out[len(out)-1])

	// 数量不超限时原样返回
	small := points[:50]
	assert.Equal(t, small, decimate(small, 100))
}

func TestDashboardWindows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tradeSvc, _, db := newTradeTestEnv(t)
	svc := NewAnalyticsService(zap.NewNop(), db, config.AnalyticsConf{
		RiskPerTrade: 50,
		AccountSize:  10000,
		EquityPoints: 500,
	})

	// 连续 14 个月每月一笔已平仓交易
	first := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		_, err := tradeSvc.Create(ctx, "01USER", TradeRequest{
			Instrument: "NQ",
			TradeDate:  first.AddDate(0, i, 0).Format(time.DateOnly),
			Direction:  models.DirectionLong,
			Entries:    []FillRequest{{Time: "09:30", Contracts: 1, Price: 15000}},
			Exits:      []FillRequest{{Time: "10:00", Contracts: 1, Price: 15010}},
		})
		require.NoError(t, err)
	}

	dashboard, err := svc.GetDashboard(ctx, "01USER")
	require.NoError(t, err)
	assert.Equal(t, 14, dashboard.TotalTrades)

	// 月度图表只保留最近 12 个月
	require.Len(t, dashboard.Monthly, 12)
	assert.Equal(t, "2024-03", dashboard.Monthly[0].Period)
	assert.Equal(t, "2025-02", dashboard.Monthly[11].Period)
}

func TestTradingPeriodMetrics(t *testing.T) {
	t.Parallel()

	// 跨度 8 天（6/1 到 6/8 含两端）
	trades := []models.Trade{
		closedTrade("t1", day(1), 70),
		closedTrade("t2", day(8), 70),
	}
	a := testAnalyticsService().compute(trades)

	assert.Equal(t, 8, a.TradingDays)
	assert.InDelta(t, 2.0/8*7, a.TradesPerWeek, 1e-9)
	assert.InDelta(t, 140.0/8*30, a.PnlPerMonth, 1e-9)
	assert.InDelta(t, 140.0/10000*100, a.ReturnOnAccount, 1e-9)

	// TotalR = 140/50 = 2.8，按日均摊后归一
	assert.InDelta(t, 2.8/8, a.AvgRPerDay, 1e-9)
	assert.InDelta(t, 2.8/8*7, a.AvgRPerWeek, 1e-9)
	assert.InDelta(t, 2.8/8*30, a.AvgRPerMonth, 1e-9)
	assert.InDelta(t, 2.8/8*252, a.AvgAnnualR, 1e-9)
}
