package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstrumentService 交易品种注册表
type InstrumentService struct {
	*orz.Service
	logger         *zap.Logger
	instrumentRepo *repo.InstrumentRepo
}

func NewInstrumentService(logger *zap.Logger, db *gorm.DB) *InstrumentService {
	return &InstrumentService{
		Service:        orz.NewService(db),
		logger:         logger,
		instrumentRepo: repo.NewInstrumentRepo(db),
	}
}

// InstrumentRequest 品种创建/更新请求
type InstrumentRequest struct {
	Symbol       string  `json:"symbol" validate:"required,max=32"`
	Name         string  `json:"name" validate:"required,max=128"`
	Exchange     string  `json:"exchange"`
	AssetClass   string  `json:"asset_class"`
	ProductGroup string  `json:"product_group"`
	PointValue   float64 `json:"point_value" validate:"gt=0"`
	TickSize     float64 `json:"tick_size" validate:"gte=0"`
	Currency     string  `json:"currency"`
	IsActive     *bool   `json:"is_active"`
}

// List 全部品种，按代码排序
func (s *InstrumentService) List(ctx context.Context) ([]models.Instrument, error) {
	return s.instrumentRepo.FindAllOrderBySymbol(ctx)
}

// ListActive 激活的品种，下拉框使用
func (s *InstrumentService) ListActive(ctx context.Context) ([]models.Instrument, error) {
	return s.instrumentRepo.FindAllActive(ctx)
}

// Get 按 ID 获取
func (s *InstrumentService) Get(ctx context.Context, id string) (models.Instrument, error) {
	item, err := s.instrumentRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, xe.ErrInstrumentNotFound
		}
		return item, err
	}
	return item, nil
}

// Resolve 先按 ID 再按代码解析品种，代码不区分大小写
func (s *InstrumentService) Resolve(ctx context.Context, idOrSymbol string) (models.Instrument, error) {
	idOrSymbol = strings.TrimSpace(idOrSymbol)
	if idOrSymbol == "" {
		return models.Instrument{}, xe.ErrInstrumentNotFound
	}
	item, err := s.instrumentRepo.FindById(ctx, idOrSymbol)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return item, err
	}
	item, err = s.instrumentRepo.FindBySymbol(ctx, idOrSymbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, xe.ErrInstrumentNotFound
		}
		return item, err
	}
	return item, nil
}

// Create 创建品种，代码统一大写且全局唯一
func (s *InstrumentService) Create(ctx context.Context, req InstrumentRequest) (models.Instrument, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if _, err := s.instrumentRepo.FindBySymbol(ctx, symbol); err == nil {
		return models.Instrument{}, xe.ErrInstrumentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Instrument{}, err
	}

	item := models.Instrument{
		ID:           ulid.Make().String(),
		Symbol:       symbol,
		Name:         req.Name,
		Exchange:     req.Exchange,
		AssetClass:   req.AssetClass,
		ProductGroup: req.ProductGroup,
		PointValue:   req.PointValue,
		TickSize:     req.TickSize,
		Currency:     req.Currency,
		IsActive:     true,
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}
	if err := s.instrumentRepo.Create(ctx, &item); err != nil {
		return models.Instrument{}, err
	}
	s.logger.Info("instrument created", zap.String("symbol", symbol))
	return item, nil
}

// Update 更新品种，改代码时重新查重
func (s *InstrumentService) Update(ctx context.Context, id string, req InstrumentRequest) (models.Instrument, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return item, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol != item.Symbol {
		if _, err := s.instrumentRepo.FindBySymbol(ctx, symbol); err == nil {
			return item, xe.ErrInstrumentExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return item, err
		}
	}

	item.Symbol = symbol
	item.Name = req.Name
	item.Exchange = req.Exchange
	item.AssetClass = req.AssetClass
	item.ProductGroup = req.ProductGroup
	item.PointValue = req.PointValue
	item.TickSize = req.TickSize
	if req.Currency != "" {
		item.Currency = req.Currency
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	// 结构体 Updates 会跳过零值字段，整体覆盖必须用 Save
	if err := s.instrumentRepo.Save(ctx, &item); err != nil {
		return item, err
	}
	s.logger.Info("instrument updated", zap.String("symbol", symbol))
	return item, nil
}

// SetActive 停用/启用，停用不影响已有交易的盈亏计算
func (s *InstrumentService) SetActive(ctx context.Context, id string, active bool) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	item.IsActive = active
	return s.instrumentRepo.Save(ctx, &item)
}

// Delete 删除品种，被交易引用时拒绝
func (s *InstrumentService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.instrumentRepo.CountReferencingTrades(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return xe.ErrInstrumentReferenced
	}
	if err := s.instrumentRepo.DeleteById(ctx, id); err != nil {
		return err
	}
	s.logger.Info("instrument deleted", zap.String("symbol", item.Symbol))
	return nil
}

// EnsureDefaults 首次启动播种常用期货品种
func (s *InstrumentService) EnsureDefaults(ctx context.Context) error {
	count, err := s.instrumentRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []models.Instrument{
		{Symbol: "NQ", Name: "E-mini Nasdaq-100", Exchange: "CME", AssetClass: "Futures", ProductGroup: "Equity Index", PointValue: 20, TickSize: 0.25},
		{Symbol: "ES", Name: "E-mini S&P 500", Exchange: "CME", AssetClass: "Futures", ProductGroup: "Equity Index", PointValue: 50, TickSize: 0.25},
		{Symbol: "YM", Name: "E-mini Dow", Exchange: "CBOT", AssetClass: "Futures", ProductGroup: "Equity Index", PointValue: 5, TickSize: 1},
		{Symbol: "RTY", Name: "E-mini Russell 2000", Exchange: "CME", AssetClass: "Futures", ProductGroup: "Equity Index", PointValue: 50, TickSize: 0.1},
		{Symbol: "CL", Name: "Crude Oil", Exchange: "NYMEX", AssetClass: "Futures", ProductGroup: "Energy", PointValue: 1000, TickSize: 0.01},
		{Symbol: "GC", Name: "Gold", Exchange: "COMEX", AssetClass: "Futures", ProductGroup: "Metals", PointValue: 100, TickSize: 0.1},
	}
	return s.Transaction(ctx, func(ctx context.Context) error {
		for i := range defaults {
			defaults[i].ID = ulid.Make().String()
			defaults[i].Currency = "USD"
			defaults[i].IsActive = true
			if err := s.instrumentRepo.Create(ctx, &defaults[i]); err != nil {
				return err
			}
		}
		s.logger.Info("default instruments seeded", zap.Int("count", len(defaults)))
		return nil
	})
}
