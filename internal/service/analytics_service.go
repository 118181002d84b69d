package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/pkg/stats"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticsService 组合绩效分析引擎
type AnalyticsService struct {
	*orz.Service
	logger    *zap.Logger
	conf      config.AnalyticsConf
	tradeRepo *repo.TradeRepo
}

func NewAnalyticsService(logger *zap.Logger, db *gorm.DB, conf config.AnalyticsConf) *AnalyticsService {
	return &AnalyticsService{
		Service:   orz.NewService(db),
		logger:    logger,
		conf:      conf,
		tradeRepo: repo.NewTradeRepo(db),
	}
}

// EquityPoint 权益曲线点
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// DrawdownPeriod 回撤区间，持续时长按低于峰值的交易笔数计
type DrawdownPeriod struct {
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"` // 未恢复时为最后一笔交易日
	Depth          float64 `json:"depth"`
	DurationTrades int     `json:"duration_trades"`
	Recovered      bool    `json:"recovered"`
}

// JSONFloat 非有限值序列化为 null，encoding/json 不接受 ±Inf
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// PeriodPnl 按期间聚合的盈亏
type PeriodPnl struct {
	Period string  `json:"period"`
	Pnl    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// Analytics 组合绩效指标全集，只统计已平仓交易
type Analytics struct {
	TotalTrades int `json:"total_trades"`
	Winners     int `json:"winners"`
	Losers      int `json:"losers"`
	Breakevens  int `json:"breakevens"`

	TotalPnl    float64 `json:"total_pnl"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"` // 正数表示

	WinRate      float64   `json:"win_rate"`
	ProfitFactor JSONFloat `json:"profit_factor"` // 无亏损且有盈利时为 +Inf
	AvgWin       float64   `json:"avg_win"`
	AvgLoss      float64   `json:"avg_loss"` // 正数表示
	LargestWin   float64   `json:"largest_win"`
	LargestLoss  float64   `json:"largest_loss"`

	ExpectancyDollars float64 `json:"expectancy_dollars"`
	ExpectancyR       float64 `json:"expectancy_r"` // 固定风险归一化后的期望 R
	TotalR            float64 `json:"total_r"`
	AvgR              float64 `json:"avg_r"`
	StdDevR           float64 `json:"std_dev_r"`
	Sqn               float64 `json:"sqn"`
	Sqn100            float64 `json:"sqn_100"`
	KellyPercent      float64 `json:"kelly_percent"`
	Skewness          float64 `json:"skewness"`
	Kurtosis          float64 `json:"kurtosis"`

	MaxDrawdown          float64          `json:"max_drawdown"`
	MedianDrawdown       float64          `json:"median_drawdown"` // 仅统计大于 0 的逐笔回撤样本
	AvgDrawdown          float64          `json:"avg_drawdown"`
	MaxDrawdownDuration  int              `json:"max_drawdown_duration"` // 低于峰值的交易笔数
	CurrentDrawdown      float64          `json:"current_drawdown"`
	DrawdownPeriods      []DrawdownPeriod `json:"drawdown_periods"`
	MaxConsecutiveWins   int              `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int              `json:"max_consecutive_losses"`

	ReturnOnAccount  float64 `json:"return_on_account"` // 百分比
	TradingDays      int     `json:"trading_days"`      // 首末交易日跨度（含两端）
	TradesPerWeek    float64 `json:"trades_per_week"`
	TradesPerMonth   float64 `json:"trades_per_month"`
	PnlPerWeek       float64 `json:"pnl_per_week"`
	PnlPerMonth      float64 `json:"pnl_per_month"`
	AvgRPerDay       float64 `json:"avg_r_per_day"` // TotalR 按日均摊，再按 7/30/252 归一
	AvgRPerWeek      float64 `json:"avg_r_per_week"`
	AvgRPerMonth     float64 `json:"avg_r_per_month"`
	AvgAnnualR       float64 `json:"avg_annual_r"`
	AnnualizedReturn float64 `json:"annualized_return"` // 百分比

	EquityCurve []EquityPoint       `json:"equity_curve"`
	Daily       []PeriodPnl         `json:"daily"`
	Monthly     []PeriodPnl         `json:"monthly"`
	ByModel     map[string]ModelPnl `json:"by_model"`
}

// ModelPnl 按交易模型聚合
type ModelPnl struct {
	Trades  int     `json:"trades"`
	Winners int     `json:"winners"`
	Pnl     float64 `json:"pnl"`
	WinRate float64 `json:"win_rate"`
}

// CalendarDay 日历单元格
type CalendarDay struct {
	Pnl    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// Portfolio 计算用户组合的全量绩效指标
func (s *AnalyticsService) Portfolio(ctx context.Context, userID string, filter repo.TradeFilter) (*Analytics, error) {
	trades, err := s.tradeRepo.FindByUserChronological(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.compute(trades), nil
}

// ForModel 计算单个交易模型的绩效指标
func (s *AnalyticsService) ForModel(ctx context.Context, userID, modelID string) (*Analytics, error) {
	trades, err := s.tradeRepo.FindByModel(ctx, userID, modelID)
	if err != nil {
		return nil, err
	}
	return s.compute(trades), nil
}

// closedOnly 过滤出已平仓交易，输入已按 (trade_date, id) 排好序
func closedOnly(trades []models.Trade) []*models.Trade {
	out := make([]*models.Trade, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		if t.IsOpen() || t.TotalExited() == 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// compute 单次遍历收集计数与序列，再派生各项指标；空输入返回全零
func (s *AnalyticsService) compute(all []models.Trade) *Analytics {
	a := &Analytics{
		EquityCurve:     []EquityPoint{},
		Daily:           []PeriodPnl{},
		Monthly:         []PeriodPnl{},
		DrawdownPeriods: []DrawdownPeriod{},
		ByModel:         map[string]ModelPnl{},
	}
	closed := closedOnly(all)
	if len(closed) == 0 {
		return a
	}

	pnls := make([]float64, 0, len(closed))
	equity := make([]EquityPoint, 0, len(closed))
	var cumulative float64

	dailyIdx := map[string]int{}
	monthlyIdx := map[string]int{}

	var curWins, curLosses int

	for _, t := range closed {
		pnl := t.GrossPnl()
		pnls = append(pnls, pnl)
		cumulative += pnl
		day := t.TradeDate.Format(time.DateOnly)
		month := t.TradeDate.Format("2006-01")
		equity = append(equity, EquityPoint{Date: day, Equity: cumulative})

		if idx, ok := dailyIdx[day]; ok {
			a.Daily[idx].Pnl += pnl
			a.Daily[idx].Trades++
		} else {
			dailyIdx[day] = len(a.Daily)
			a.Daily = append(a.Daily, PeriodPnl{Period: day, Pnl: pnl, Trades: 1})
		}
		if idx, ok := monthlyIdx[month]; ok {
			a.Monthly[idx].Pnl += pnl
			a.Monthly[idx].Trades++
		} else {
			monthlyIdx[month] = len(a.Monthly)
			a.Monthly = append(a.Monthly, PeriodPnl{Period: month, Pnl: pnl, Trades: 1})
		}

		modelName := "Unknown"
		if t.TradingModel != nil {
			modelName = t.TradingModel.Name
		}
		mp := a.ByModel[modelName]
		mp.Trades++
		mp.Pnl += pnl
		if pnl > 0 {
			mp.Winners++
		}
		a.ByModel[modelName] = mp

		switch {
		case pnl > 0:
			a.Winners++
			a.GrossProfit += pnl
			curWins++
			curLosses = 0
		case pnl < 0:
			a.Losers++
			a.GrossLoss += -pnl
			curLosses++
			curWins = 0
		default:
			// 保本交易终结连胜/连亏，但不开启新的连续段
			a.Breakevens++
			curWins = 0
			curLosses = 0
		}
		if curWins > a.MaxConsecutiveWins {
			a.MaxConsecutiveWins = curWins
		}
		if curLosses > a.MaxConsecutiveLosses {
			a.MaxConsecutiveLosses = curLosses
		}
	}

	a.TotalTrades = len(closed)
	a.TotalPnl = cumulative
	a.WinRate = float64(a.Winners) / float64(a.TotalTrades) * 100

	switch {
	case a.GrossLoss > 0:
		a.ProfitFactor = JSONFloat(a.GrossProfit / a.GrossLoss)
	case a.GrossProfit > 0:
		a.ProfitFactor = JSONFloat(math.Inf(1))
	}

	if a.Winners > 0 {
		a.AvgWin = a.GrossProfit / float64(a.Winners)
	}
	if a.Losers > 0 {
		a.AvgLoss = a.GrossLoss / float64(a.Losers)
	}
	a.LargestWin = stats.Max(pnls)
	if a.LargestWin < 0 {
		a.LargestWin = 0
	}
	a.LargestLoss = stats.Min(pnls)
	if a.LargestLoss > 0 {
		a.LargestLoss = 0
	}

	// 固定风险归一化：每笔盈亏除以配置的单笔风险得到 R 序列
	rs := make([]float64, len(pnls))
	for i, p := range pnls {
		rs[i] = p / s.conf.RiskPerTrade
	}
	a.ExpectancyDollars = stats.Mean(pnls)
	a.AvgR = stats.Mean(rs)
	a.ExpectancyR = a.AvgR
	a.TotalR = stats.Sum(rs)
	a.StdDevR = stats.StdDev(rs)
	if a.StdDevR > 0 {
		a.Sqn = a.AvgR / a.StdDevR * math.Sqrt(float64(len(rs)))
		a.Sqn100 = a.Sqn * math.Sqrt(100/float64(len(rs)))
	}
	// Kelly 要求同时存在盈利和亏损样本，否则为 0
	if a.GrossLoss > 0 && a.Winners > 0 && a.AvgLoss > 0 {
		winRate := float64(a.Winners) / float64(a.TotalTrades)
		lossRate := float64(a.Losers) / float64(a.TotalTrades)
		a.KellyPercent = (winRate*a.AvgWin - lossRate*a.AvgLoss) / a.AvgWin * 100
	}
	a.Skewness = stats.Skewness(rs)
	a.Kurtosis = stats.Kurtosis(rs)

	s.computeDrawdowns(a, closed, equity)

	first := closed[0].TradeDate
	last := closed[len(closed)-1].TradeDate
	a.TradingDays = int(last.Sub(first).Hours()/24) + 1
	days := float64(a.TradingDays)
	a.TradesPerWeek = float64(a.TotalTrades) / days * 7
	a.TradesPerMonth = float64(a.TotalTrades) / days * 30
	a.PnlPerWeek = cumulative / days * 7
	a.PnlPerMonth = cumulative / days * 30
	a.AvgRPerDay = a.TotalR / days
	a.AvgRPerWeek = a.AvgRPerDay * 7
	a.AvgRPerMonth = a.AvgRPerDay * 30
	a.AvgAnnualR = a.AvgRPerDay * 252
	a.ReturnOnAccount = cumulative / s.conf.AccountSize * 100
	a.AnnualizedReturn = cumulative / days * 252 / s.conf.AccountSize * 100

	a.EquityCurve = decimate(equity, s.conf.EquityPoints)
	return a
}

// computeDrawdowns 沿权益曲线走回撤区间，未恢复的末段也计入持续时长
// 持续时长按低于峰值的交易笔数计，逐笔回撤样本供中位数/均值统计
func (s *AnalyticsService) computeDrawdowns(a *Analytics, closed []*models.Trade, equity []EquityPoint) {
	var peak float64
	peakDate := closed[0].TradeDate
	var inDrawdown bool
	var current DrawdownPeriod
	var currentDepth float64
	samples := make([]float64, 0, len(equity))

	for i, pt := range equity {
		date := closed[i].TradeDate
		if pt.Equity >= peak {
			if inDrawdown {
				current.EndDate = date.Format(time.DateOnly)
				current.Recovered = true
				a.DrawdownPeriods = append(a.DrawdownPeriods, current)
				inDrawdown = false
			}
			peak = pt.Equity
			peakDate = date
			samples = append(samples, 0)
			continue
		}
		depth := peak - pt.Equity
		samples = append(samples, depth)
		if !inDrawdown {
			inDrawdown = true
			current = DrawdownPeriod{StartDate: peakDate.Format(time.DateOnly)}
			currentDepth = 0
		}
		current.DurationTrades++
		if depth > currentDepth {
			currentDepth = depth
			current.Depth = depth
		}
		if depth > a.MaxDrawdown {
			a.MaxDrawdown = depth
		}
	}

	if inDrawdown {
		last := closed[len(closed)-1].TradeDate
		current.EndDate = last.Format(time.DateOnly)
		current.Recovered = false
		a.DrawdownPeriods = append(a.DrawdownPeriods, current)
		a.CurrentDrawdown = currentDepth
	}

	if positive := stats.Positive(samples); len(positive) > 0 {
		a.MedianDrawdown = stats.Median(positive)
		a.AvgDrawdown = stats.Mean(positive)
	}

	for _, dp := range a.DrawdownPeriods {
		if dp.DurationTrades > a.MaxDrawdownDuration {
			a.MaxDrawdownDuration = dp.DurationTrades
		}
	}
}

// decimate 等距抽稀权益曲线，始终保留最后一个点
func decimate(points []EquityPoint, limit int) []EquityPoint {
	if limit <= 0 || len(points) <= limit {
		return points
	}
	step := (len(points) + limit - 1) / limit
	out := make([]EquityPoint, 0, limit)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	if out[len(out)-1] != points[len(points)-1] {
		out = append(out, points[len(points)-1])
	}
	return out
}

// Dashboard 仪表盘载荷：汇总 + 最近交易 + 最近15个交易日 + 月度
type Dashboard struct {
	TotalPnl     float64        `json:"total_pnl"`
	TotalTrades  int            `json:"total_trades"`
	WinRate      float64        `json:"win_rate"`
	OpenTrades   int            `json:"open_trades"`
	RecentTrades []models.Trade `json:"recent_trades"`
	Daily        []PeriodPnl    `json:"daily"`   // 最近15个交易日
	Monthly      []PeriodPnl    `json:"monthly"` // 最近12个月
}

// GetDashboard 生成仪表盘数据
func (s *AnalyticsService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	analytics, err := s.Portfolio(ctx, userID, repo.TradeFilter{})
	if err != nil {
		return nil, err
	}
	recent, err := s.tradeRepo.FindRecentTrades(ctx, userID, 10)
	if err != nil {
		return nil, err
	}
	var open int
	allTrades, err := s.tradeRepo.FindByUser(ctx, userID, repo.TradeFilter{})
	if err != nil {
		return nil, err
	}
	for i := range allTrades {
		if allTrades[i].IsOpen() {
			open++
		}
	}

	daily := analytics.Daily
	if len(daily) > 15 {
		daily = daily[len(daily)-15:]
	}
	monthly := analytics.Monthly
	if len(monthly) > 12 {
		monthly = monthly[len(monthly)-12:]
	}
	return &Dashboard{
		TotalPnl:     analytics.TotalPnl,
		TotalTrades:  analytics.TotalTrades,
		WinRate:      analytics.WinRate,
		OpenTrades:   open,
		RecentTrades: recent,
		Daily:        daily,
		Monthly:      monthly,
	}, nil
}

// GetCalendar 某年某月的盈亏日历
func (s *AnalyticsService) GetCalendar(ctx context.Context, userID string, year int, month time.Month) (map[string]CalendarDay, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	trades, err := s.tradeRepo.FindByUserChronological(ctx, userID, repo.TradeFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	calendar := map[string]CalendarDay{}
	for _, t := range closedOnly(trades) {
		day := t.TradeDate.Format(time.DateOnly)
		cell := calendar[day]
		cell.Pnl += t.GrossPnl()
		cell.Trades++
		calendar[day] = cell
	}
	return calendar, nil
}
