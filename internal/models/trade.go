package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 交易方向
const (
	DirectionLong  = "Long"
	DirectionShort = "Short"
)

// HowClosedStillOpen 仅用于展示的持仓中标注，开平状态以 IsOpen 计算结果为准
const HowClosedStillOpen = "Still Open"

// Trade 交易记录（聚合根：一条交易头 + 多笔分批进出场）
type Trade struct {
	ID     string `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID string `gorm:"type:varchar(26);not null;index" json:"user_id"`

	// 品种：优先关联 Instrument，兼容旧数据的纯符号字段；支持单笔点值覆盖
	InstrumentID     *string     `gorm:"type:varchar(26);index" json:"instrument_id"`
	Instrument       *Instrument `gorm:"foreignKey:InstrumentID" json:"instrument,omitempty"`
	InstrumentLegacy string      `gorm:"type:varchar(20);index" json:"instrument_legacy,omitempty"`
	PointValue       *float64    `gorm:"type:decimal(20,8)" json:"point_value,omitempty"` // 点值覆盖，优先于品种点值
	Pnl              *float64    `gorm:"type:decimal(20,8);index" json:"pnl"`             // 缓存盈亏，写入时重算，查询直接读列

	MissingPointValue bool `gorm:"-" json:"missing_point_value"` // 点值缺失，盈亏退化为 0；查询时派生

	TradeDate       time.Time `gorm:"type:date;not null;index" json:"trade_date"` // 交易日（进出场只记录时分）
	Direction       string    `gorm:"type:varchar(5);not null" json:"direction"`  // Long/Short
	InitialStopLoss *float64  `gorm:"type:decimal(20,8)" json:"initial_stop_loss"`
	TerminusTarget  *float64  `gorm:"type:decimal(20,8)" json:"terminus_target"`
	IsDca           bool      `gorm:"default:false" json:"is_dca"` // 多笔进场

	Mae *float64 `gorm:"type:decimal(20,8)" json:"mae"` // 最大不利波动价位
	Mfe *float64 `gorm:"type:decimal(20,8)" json:"mfe"` // 最大有利波动价位

	TradeNotes string `gorm:"type:text" json:"trade_notes"`
	HowClosed  string `gorm:"type:varchar(20)" json:"how_closed"`
	NewsEvent  string `gorm:"type:varchar(100)" json:"news_event"`

	// 评分（1-5）
	RulesRating       *int `json:"rules_rating"`
	ManagementRating  *int `json:"management_rating"`
	TargetRating      *int `json:"target_rating"`
	EntryRating       *int `json:"entry_rating"`
	PreparationRating *int `json:"preparation_rating"`

	PsychScoredHighest string `gorm:"type:text" json:"psych_scored_highest"`
	PsychScoredLowest  string `gorm:"type:text" json:"psych_scored_lowest"`

	OverallAnalysisNotes string `gorm:"type:text" json:"overall_analysis_notes"`
	TradeManagementNotes string `gorm:"type:text" json:"trade_management_notes"`
	ErrorsNotes          string `gorm:"type:text" json:"errors_notes"`
	ImprovementsNotes    string `gorm:"type:text" json:"improvements_notes"`
	ScreenshotLink       string `gorm:"type:varchar(255)" json:"screenshot_link"`

	TradingModelID *string       `gorm:"type:varchar(26);index" json:"trading_model_id"`
	TradingModel   *TradingModel `gorm:"foreignKey:TradingModelID" json:"trading_model,omitempty"`

	Entries []EntryPoint `gorm:"foreignKey:TradeID;constraint:OnDelete:CASCADE" json:"entries"`
	Exits   []ExitPoint  `gorm:"foreignKey:TradeID;constraint:OnDelete:CASCADE" json:"exits"`
	Tags    []Tag        `gorm:"many2many:trade_tags" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (*Trade) TableName() string {
	return "trades"
}

// AfterFind 标注点值缺失的交易，这类交易的盈亏退化为 0
func (t *Trade) AfterFind(*gorm.DB) error {
	t.MissingPointValue = t.PointValueSafe() == nil
	return nil
}

// EntryPoint 进场记录（归属于交易，无独立生命周期）
type EntryPoint struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	TradeID   string    `gorm:"type:varchar(26);not null;index" json:"trade_id"`
	EntryTime time.Time `gorm:"not null" json:"entry_time"` // 仅时分有效，交易日取自 Trade
	Contracts int       `gorm:"not null" json:"contracts"`
	Price     float64   `gorm:"type:decimal(20,8);not null" json:"price"`
}

// TableName 指定表名
func (EntryPoint) TableName() string {
	return "entry_points"
}

// ExitPoint 出场记录
type ExitPoint struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	TradeID   string    `gorm:"type:varchar(26);not null;index" json:"trade_id"`
	ExitTime  time.Time `gorm:"not null" json:"exit_time"`
	Contracts int       `gorm:"not null" json:"contracts"`
	Price     float64   `gorm:"type:decimal(20,8);not null" json:"price"`
}

// TableName 指定表名
func (ExitPoint) TableName() string {
	return "exit_points"
}

// Symbol 品种符号，优先取关联品种，回退到旧符号字段
func (t *Trade) Symbol() string {
	if t.Instrument != nil {
		return t.Instrument.Symbol
	}
	return t.InstrumentLegacy
}

// PointValueSafe 有效点值：单笔覆盖 > 品种点值 > 无
func (t *Trade) PointValueSafe() *float64 {
	if t.PointValue != nil && *t.PointValue > 0 {
		return t.PointValue
	}
	if t.Instrument != nil && t.Instrument.PointValue > 0 {
		pv := t.Instrument.PointValue
		return &pv
	}
	return nil
}

// TotalEntered 进场总手数
func (t *Trade) TotalEntered() int {
	var total int
	for _, e := range t.Entries {
		total += e.Contracts
	}
	return total
}

// TotalExited 出场总手数
func (t *Trade) TotalExited() int {
	var total int
	for _, x := range t.Exits {
		total += x.Contracts
	}
	return total
}

// AverageEntryPrice 加权平均进场价，无进场时未定义
func (t *Trade) AverageEntryPrice() (float64, bool) {
	total := t.TotalEntered()
	if total == 0 {
		return 0, false
	}
	var value float64
	for _, e := range t.Entries {
		value += float64(e.Contracts) * e.Price
	}
	return value / float64(total), true
}

// AverageExitPrice 加权平均出场价，无出场时未定义
func (t *Trade) AverageExitPrice() (float64, bool) {
	total := t.TotalExited()
	if total == 0 {
		return 0, false
	}
	var value float64
	for _, x := range t.Exits {
		value += float64(x.Contracts) * x.Price
	}
	return value / float64(total), true
}

// IsOpen 是否持仓中：出场手数未覆盖进场手数
func (t *Trade) IsOpen() bool {
	return t.TotalExited() < t.TotalEntered()
}

// FirstEntry 按时间最早的进场
func (t *Trade) FirstEntry() *EntryPoint {
	var first *EntryPoint
	for i := range t.Entries {
		e := &t.Entries[i]
		if first == nil || clockOf(e.EntryTime).Before(clockOf(first.EntryTime)) {
			first = e
		}
	}
	return first
}

// LastExit 按时间最晚的出场
func (t *Trade) LastExit() *ExitPoint {
	var last *ExitPoint
	for i := range t.Exits {
		x := &t.Exits[i]
		if last == nil || clockOf(x.ExitTime).After(clockOf(last.ExitTime)) {
			last = x
		}
	}
	return last
}

// EntryTimestamp 首笔进场的完整时间（交易日 + 进场时分）
func (t *Trade) EntryTimestamp() *time.Time {
	first := t.FirstEntry()
	if first == nil {
		return nil
	}
	ts := combineDateTime(t.TradeDate, first.EntryTime)
	return &ts
}

// TimeInTrade 持仓时长：最晚出场减最早进场，无出场时未定义
func (t *Trade) TimeInTrade() (time.Duration, bool) {
	first := t.FirstEntry()
	last := t.LastExit()
	if first == nil || last == nil {
		return 0, false
	}
	entered := combineDateTime(t.TradeDate, first.EntryTime)
	exited := combineDateTime(t.TradeDate, last.ExitTime)
	if exited.Before(entered) {
		return 0, false
	}
	return exited.Sub(entered), true
}

// TimeInTradeDisplay 持仓时长展示文本
func (t *Trade) TimeInTradeDisplay() string {
	d, ok := t.TimeInTrade()
	if !ok {
		if t.IsOpen() {
			return "Open"
		}
		return "N/A"
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02dh %02dm", total/3600, total%3600/60)
}

// GrossPnl 已实现毛盈亏：均价差 × 出场手数 × 点值，缺少任一输入时为 0
func (t *Trade) GrossPnl() float64 {
	pv := t.PointValueSafe()
	if pv == nil || *pv == 0 {
		return 0
	}
	exited := t.TotalExited()
	if exited == 0 {
		return 0
	}
	avgEntry, okEntry := t.AverageEntryPrice()
	avgExit, okExit := t.AverageExitPrice()
	if !okEntry || !okExit {
		return 0
	}

	var pointsPerContract float64
	switch t.Direction {
	case DirectionLong:
		pointsPerContract = avgExit - avgEntry
	case DirectionShort:
		pointsPerContract = avgEntry - avgExit
	default:
		return 0
	}
	return pointsPerContract * float64(exited) * *pv
}

// CalculateAndStorePnl 重算并写入缓存盈亏列，任何改动进出场的事务内都必须调用
func (t *Trade) CalculateAndStorePnl() float64 {
	pnl := t.GrossPnl()
	t.Pnl = &pnl
	return pnl
}

// DollarRisk 初始风险金额：首笔进场与初始止损的距离 × 首笔手数 × 点值
func (t *Trade) DollarRisk() *float64 {
	first := t.FirstEntry()
	sl := t.InitialStopLoss
	pv := t.PointValueSafe()
	if first == nil || sl == nil || pv == nil || *pv == 0 {
		return nil
	}

	var riskPoints float64
	switch t.Direction {
	case DirectionLong:
		riskPoints = first.Price - *sl
	case DirectionShort:
		riskPoints = *sl - first.Price
	}
	// 止损不在不利方向时风险记为 0
	risk := 0.0
	if riskPoints > 0 {
		risk = riskPoints * float64(first.Contracts) * *pv
	}
	return &risk
}

// PnlInR 以本笔初始风险为 1R 的盈亏倍数，持仓中或风险未定义时无值
func (t *Trade) PnlInR() *float64 {
	risk := t.DollarRisk()
	if risk == nil || *risk == 0 {
		return nil
	}
	if t.IsOpen() || t.TotalExited() == 0 {
		return nil
	}
	r := t.GrossPnl() / *risk
	return &r
}

// RiskRewardRatio 计划盈亏比：|目标-均价| / |均价-止损|
func (t *Trade) RiskRewardRatio() *float64 {
	avgEntry, ok := t.AverageEntryPrice()
	sl := t.InitialStopLoss
	tp := t.TerminusTarget
	if !ok || sl == nil || tp == nil || *sl == avgEntry {
		return nil
	}
	risk := avgEntry - *sl
	if risk < 0 {
		risk = -risk
	}
	reward := *tp - avgEntry
	if reward < 0 {
		reward = -reward
	}
	ratio := reward / risk
	return &ratio
}

// combineDateTime 在交易日上拼接时分秒
func combineDateTime(date time.Time, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}

// clockOf 取时分秒用于同日内排序
func clockOf(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
