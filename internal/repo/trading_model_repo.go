package repo

import (
	"context"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradingModelRepo(db *gorm.DB) *TradingModelRepo {
	return &TradingModelRepo{
		Repository: orz.NewRepository[models.TradingModel, string](db),
	}
}

type TradingModelRepo struct {
	orz.Repository[models.TradingModel, string]
}

// FindVisibleToUser 用户可见的交易模型：内置模型加上自己的
func (r TradingModelRepo) FindVisibleToUser(ctx context.Context, userID string) ([]models.TradingModel, error) {
	var items []models.TradingModel
	db := r.GetDB(ctx)
	err := db.Model(&models.TradingModel{}).
		Where("user_id = ? OR is_default = ?", userID, true).
		Order("is_default DESC, name ASC").
		Find(&items).Error
	return items, err
}

// FindActiveByUser 用户可用于记录交易的激活模型
func (r TradingModelRepo) FindActiveByUser(ctx context.Context, userID string) ([]models.TradingModel, error) {
	var items []models.TradingModel
	db := r.GetDB(ctx)
	err := db.Model(&models.TradingModel{}).
		Where("is_active = ?", true).
		Where("user_id = ? OR is_default = ?", userID, true).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// FindByUserAndName 同名检查
func (r TradingModelRepo) FindByUserAndName(ctx context.Context, userID, name string) (m models.TradingModel, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.TradingModel{}).
		Where("user_id = ? AND name = ?", userID, name).
		First(&m).Error
	return m, err
}

// FindVisibleByName 按名称解析用户可见的模型，CSV 导入使用
func (r TradingModelRepo) FindVisibleByName(ctx context.Context, userID, name string) (m models.TradingModel, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.TradingModel{}).
		Where("name = ?", name).
		Where("user_id = ? OR is_default = ?", userID, true).
		Order("is_default ASC").
		First(&m).Error
	return m, err
}

// CountReferencingTrades 引用该模型的交易数量，删除前检查
func (r TradingModelRepo) CountReferencingTrades(ctx context.Context, modelID string) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Model(&models.Trade{}).Where("trading_model_id = ?", modelID).Count(&count).Error
	return count, err
}
