package repo

import (
	"context"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

// 盈亏筛选桶
const (
	PnlBucketWinners   = "winners"
	PnlBucketLosers    = "losers"
	PnlBucketBreakeven = "breakeven"
)

// TradeFilter 交易列表筛选条件，nil/空值表示不过滤
type TradeFilter struct {
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Direction    string     `json:"direction"`
	InstrumentID string     `json:"instrument_id"`
	ModelID      string     `json:"model_id"`
	PnlBucket    string     `json:"pnl_bucket"` // winners/losers/breakeven
	MinPnl       *float64   `json:"min_pnl"`
	MaxPnl       *float64   `json:"max_pnl"`
	MinContracts *int       `json:"min_contracts"`
	MaxContracts *int       `json:"max_contracts"`
	IsDca        *bool      `json:"is_dca"`
	RatingFloor  *int       `json:"rating_floor"`
	HowClosed    string     `json:"how_closed"`
	TagIDs       []string   `json:"tag_ids"` // 多标签为 AND 语义
}

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// applyFilter 把筛选条件拼到查询上，盈亏相关条件直接读缓存列
func (r TradeRepo) applyFilter(db *gorm.DB, filter TradeFilter) *gorm.DB {
	if filter.StartDate != nil {
		db = db.Where("trade_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("trade_date <= ?", *filter.EndDate)
	}
	if filter.Direction != "" {
		db = db.Where("direction = ?", filter.Direction)
	}
	if filter.InstrumentID != "" {
		db = db.Where("instrument_id = ?", filter.InstrumentID)
	}
	if filter.ModelID != "" {
		db = db.Where("trading_model_id = ?", filter.ModelID)
	}
	switch filter.PnlBucket {
	case PnlBucketWinners:
		db = db.Where("pnl > 0")
	case PnlBucketLosers:
		db = db.Where("pnl < 0")
	case PnlBucketBreakeven:
		db = db.Where("pnl = 0")
	}
	if filter.MinPnl != nil {
		db = db.Where("pnl >= ?", *filter.MinPnl)
	}
	if filter.MaxPnl != nil {
		db = db.Where("pnl <= ?", *filter.MaxPnl)
	}
	if filter.MinContracts != nil {
		db = db.Where("id IN (?)", r.contractTotals().Having("SUM(contracts) >= ?", *filter.MinContracts))
	}
	if filter.MaxContracts != nil {
		db = db.Where("id IN (?)", r.contractTotals().Having("SUM(contracts) <= ?", *filter.MaxContracts))
	}
	if filter.IsDca != nil {
		db = db.Where("is_dca = ?", *filter.IsDca)
	}
	if filter.RatingFloor != nil {
		floor := *filter.RatingFloor
		db = db.Where("rules_rating >= ? AND management_rating >= ? AND target_rating >= ? AND entry_rating >= ? AND preparation_rating >= ?",
			floor, floor, floor, floor, floor)
	}
	if filter.HowClosed != "" {
		db = db.Where("how_closed = ?", filter.HowClosed)
	}
	for _, tagID := range filter.TagIDs {
		db = db.Where("EXISTS (SELECT 1 FROM trade_tags tt WHERE tt.trade_id = trades.id AND tt.tag_id = ?)", tagID)
	}
	return db
}

// contractTotals 按交易聚合进场手数的子查询
func (r TradeRepo) contractTotals() *gorm.DB {
	return r.GetDB(context.Background()).
		Model(&models.EntryPoint{}).
		Select("trade_id").
		Group("trade_id")
}

// FindByUser 按条件查询某用户的交易，按交易日和 ID 倒序（列表页）
func (r TradeRepo) FindByUser(ctx context.Context, userID string, filter TradeFilter) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx).Model(&models.Trade{}).Where("user_id = ?", userID)
	db = r.applyFilter(db, filter)
	err := db.
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Preload("TradingModel").
		Preload("Tags").
		Order("trade_date DESC, id DESC").
		Find(&trades).Error
	return trades, err
}

// FindByUserChronological 按 (trade_date ASC, id ASC) 排序的全量查询，分析引擎的确定性输入
func (r TradeRepo) FindByUserChronological(ctx context.Context, userID string, filter TradeFilter) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx).Model(&models.Trade{}).Where("user_id = ?", userID)
	db = r.applyFilter(db, filter)
	err := db.
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Preload("TradingModel").
		Order("trade_date ASC, id ASC").
		Find(&trades).Error
	return trades, err
}

// FindByUserAndID 查找归属校验过的单条交易
func (r TradeRepo) FindByUserAndID(ctx context.Context, userID, id string) (m models.Trade, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.Trade{}).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Preload("TradingModel").
		Preload("Tags").
		First(&m).Error
	return m, err
}

// FindRecentTrades 获取最近的交易记录（仪表盘）
func (r TradeRepo) FindRecentTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Model(&models.Trade{}).
		Where("user_id = ?", userID).
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Preload("TradingModel").
		Order("trade_date DESC, id DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

// FindByModel 某模型下该用户的全部交易，按时间正序
func (r TradeRepo) FindByModel(ctx context.Context, userID, modelID string) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Model(&models.Trade{}).
		Where("user_id = ? AND trading_model_id = ?", userID, modelID).
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Preload("TradingModel").
		Order("trade_date ASC, id ASC").
		Find(&trades).Error
	return trades, err
}

// FindAllWithFills 全量交易（含进出场），夜间盈亏缓存校对任务使用
func (r TradeRepo) FindAllWithFills(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Model(&models.Trade{}).
		Preload("Entries").
		Preload("Exits").
		Preload("Instrument").
		Find(&trades).Error
	return trades, err
}

// UpdatePnl 仅更新缓存盈亏列
func (r TradeRepo) UpdatePnl(ctx context.Context, id string, pnl float64) error {
	db := r.GetDB(ctx)
	return db.Model(&models.Trade{}).
		Where("id = ?", id).
		Update("pnl", pnl).Error
}

// DeleteFills 删除交易的全部进出场记录（编辑时整体重建）
func (r TradeRepo) DeleteFills(ctx context.Context, tradeID string) error {
	db := r.GetDB(ctx)
	if err := db.Where("trade_id = ?", tradeID).Delete(&models.EntryPoint{}).Error; err != nil {
		return err
	}
	return db.Where("trade_id = ?", tradeID).Delete(&models.ExitPoint{}).Error
}
