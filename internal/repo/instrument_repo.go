package repo

import (
	"context"
	"strings"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewInstrumentRepo(db *gorm.DB) *InstrumentRepo {
	return &InstrumentRepo{
		Repository: orz.NewRepository[models.Instrument, string](db),
	}
}

type InstrumentRepo struct {
	orz.Repository[models.Instrument, string]
}

// FindBySymbol 按品种代码查找（不区分大小写，停用品种也可命中）
func (r InstrumentRepo) FindBySymbol(ctx context.Context, symbol string) (m models.Instrument, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("symbol = ?", strings.ToUpper(strings.TrimSpace(symbol))).
		First(&m).Error
	return m, err
}

// FindAllActive 获取所有启用中的品种（按代码排序）
func (r InstrumentRepo) FindAllActive(ctx context.Context) ([]models.Instrument, error) {
	var instruments []models.Instrument
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("is_active = ?", true).
		Order("symbol ASC").
		Find(&instruments).Error
	return instruments, err
}

// FindAllOrderBySymbol 获取所有品种（含停用）
func (r InstrumentRepo) FindAllOrderBySymbol(ctx context.Context) ([]models.Instrument, error) {
	var instruments []models.Instrument
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("symbol ASC").
		Find(&instruments).Error
	return instruments, err
}

// CountReferencingTrades 统计引用该品种的交易数量，用于禁止硬删除
func (r InstrumentRepo) CountReferencingTrades(ctx context.Context, instrumentID string) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Model(&models.Trade{}).
		Where("instrument_id = ?", instrumentID).
		Count(&count).Error
	return count, err
}
