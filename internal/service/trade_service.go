package service

import (
	"context"
	"errors"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeService 交易记录聚合服务
type TradeService struct {
	*orz.Service
	logger            *zap.Logger
	tradeRepo         *repo.TradeRepo
	tagRepo           *repo.TagRepo
	instrumentService *InstrumentService
	modelRepo         *repo.TradingModelRepo
}

func NewTradeService(logger *zap.Logger, db *gorm.DB, instrumentService *InstrumentService) *TradeService {
	return &TradeService{
		Service:           orz.NewService(db),
		logger:            logger,
		tradeRepo:         repo.NewTradeRepo(db),
		tagRepo:           repo.NewTagRepo(db),
		instrumentService: instrumentService,
		modelRepo:         repo.NewTradingModelRepo(db),
	}
}

// FillRequest 进/出场分录，时间只取时分
type FillRequest struct {
	Time      string  `json:"time" validate:"required"`
	Contracts int     `json:"contracts" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

// TradeRequest 交易创建/更新请求
type TradeRequest struct {
	Instrument      string        `json:"instrument" validate:"required"` // ID 或代码
	TradeDate       string        `json:"trade_date" validate:"required"` // YYYY-MM-DD
	Direction       string        `json:"direction" validate:"required,oneof=Long Short"`
	Entries         []FillRequest `json:"entries" validate:"required,min=1,dive"`
	Exits           []FillRequest `json:"exits" validate:"dive"`
	PointValue      *float64      `json:"point_value"` // 覆盖品种点值
	InitialStopLoss *float64      `json:"initial_stop_loss"`
	TerminusTarget  *float64      `json:"terminus_target"`
	Mae             *float64      `json:"mae"`
	Mfe             *float64      `json:"mfe"`
	IsDca           bool          `json:"is_dca"`
	HowClosed       string        `json:"how_closed"`
	NewsEvent       string        `json:"news_event"`
	TradeNotes      string        `json:"trade_notes"`

	RulesRating       *int `json:"rules_rating" validate:"omitempty,min=1,max=5"`
	ManagementRating  *int `json:"management_rating" validate:"omitempty,min=1,max=5"`
	TargetRating      *int `json:"target_rating" validate:"omitempty,min=1,max=5"`
	EntryRating       *int `json:"entry_rating" validate:"omitempty,min=1,max=5"`
	PreparationRating *int `json:"preparation_rating" validate:"omitempty,min=1,max=5"`

	PsychScoredHighest   string `json:"psych_scored_highest"`
	PsychScoredLowest    string `json:"psych_scored_lowest"`
	OverallAnalysisNotes string `json:"overall_analysis_notes"`
	TradeManagementNotes string `json:"trade_management_notes"`
	ErrorsNotes          string `json:"errors_notes"`
	ImprovementsNotes    string `json:"improvements_notes"`
	ScreenshotLink       string `json:"screenshot_link"`

	TradingModelID *string  `json:"trading_model_id"`
	TagIDs         []string `json:"tag_ids"`
}

// parseFills 解析分录时间并挂到交易日上
func parseFills(tradeDate time.Time, fills []FillRequest) ([]time.Time, error) {
	times := make([]time.Time, 0, len(fills))
	for _, f := range fills {
		clock, err := time.Parse("15:04", f.Time)
		if err != nil {
			return nil, xe.ErrInvalidParams
		}
		times = append(times, time.Date(
			tradeDate.Year(), tradeDate.Month(), tradeDate.Day(),
			clock.Hour(), clock.Minute(), 0, 0, tradeDate.Location(),
		))
	}
	return times, nil
}

// buildTrade 校验请求并组装交易实体，不落库
func (s *TradeService) buildTrade(ctx context.Context, userID string, req TradeRequest) (*models.Trade, []models.Tag, error) {
	tradeDate, err := time.Parse(time.DateOnly, req.TradeDate)
	if err != nil {
		return nil, nil, xe.ErrInvalidParams
	}
	if len(req.Entries) == 0 {
		return nil, nil, xe.ErrTradeNoEntries
	}

	instrument, err := s.instrumentService.Resolve(ctx, req.Instrument)
	if err != nil {
		return nil, nil, err
	}

	entryTimes, err := parseFills(tradeDate, req.Entries)
	if err != nil {
		return nil, nil, err
	}
	exitTimes, err := parseFills(tradeDate, req.Exits)
	if err != nil {
		return nil, nil, err
	}

	trade := &models.Trade{
		UserID:               userID,
		InstrumentID:         &instrument.ID,
		Instrument:           &instrument,
		InstrumentLegacy:     instrument.Symbol,
		PointValue:           req.PointValue,
		TradeDate:            tradeDate,
		Direction:            req.Direction,
		InitialStopLoss:      req.InitialStopLoss,
		TerminusTarget:       req.TerminusTarget,
		Mae:                  req.Mae,
		Mfe:                  req.Mfe,
		IsDca:                req.IsDca,
		HowClosed:            req.HowClosed,
		NewsEvent:            req.NewsEvent,
		TradeNotes:           req.TradeNotes,
		RulesRating:          req.RulesRating,
		ManagementRating:     req.ManagementRating,
		TargetRating:         req.TargetRating,
		EntryRating:          req.EntryRating,
		PreparationRating:    req.PreparationRating,
		PsychScoredHighest:   req.PsychScoredHighest,
		PsychScoredLowest:    req.PsychScoredLowest,
		OverallAnalysisNotes: req.OverallAnalysisNotes,
		TradeManagementNotes: req.TradeManagementNotes,
		ErrorsNotes:          req.ErrorsNotes,
		ImprovementsNotes:    req.ImprovementsNotes,
		ScreenshotLink:       req.ScreenshotLink,
		TradingModelID:       req.TradingModelID,
	}

	for i, f := range req.Entries {
		trade.Entries = append(trade.Entries, models.EntryPoint{
			ID:        ulid.Make().String(),
			EntryTime: entryTimes[i],
			Contracts: f.Contracts,
			Price:     f.Price,
		})
	}
	for i, f := range req.Exits {
		trade.Exits = append(trade.Exits, models.ExitPoint{
			ID:        ulid.Make().String(),
			ExitTime:  exitTimes[i],
			Contracts: f.Contracts,
			Price:     f.Price,
		})
	}

	if trade.TotalExited() > trade.TotalEntered() {
		return nil, nil, xe.ErrOverExit
	}
	if trade.IsOpen() && trade.HowClosed == "" {
		trade.HowClosed = models.HowClosedStillOpen
	}

	if req.TradingModelID != nil && *req.TradingModelID != "" {
		if _, err := s.modelRepo.FindById(ctx, *req.TradingModelID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, xe.ErrModelNotFound
			}
			return nil, nil, err
		}
	}

	tags, err := s.tagRepo.FindByIDsVisibleToUser(ctx, userID, req.TagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(req.TagIDs) {
		return nil, nil, xe.ErrTagNotFound
	}

	trade.CalculateAndStorePnl()
	return trade, tags, nil
}

// Create 创建交易，分录和标签在同一事务内落库，盈亏缓存同事务写入
// 已停用的品种不能再开新交易，历史交易不受影响
func (s *TradeService) Create(ctx context.Context, userID string, req TradeRequest) (*models.Trade, error) {
	trade, tags, err := s.buildTrade(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if !trade.Instrument.IsActive {
		return nil, xe.ErrInactiveInstrument
	}
	trade.ID = ulid.Make().String()
	for i := range trade.Entries {
		trade.Entries[i].TradeID = trade.ID
	}
	for i := range trade.Exits {
		trade.Exits[i].TradeID = trade.ID
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tradeRepo.Create(ctx, trade); err != nil {
			return err
		}
		if len(tags) > 0 {
			db := s.tradeRepo.GetDB(ctx)
			if err := db.Model(trade).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", trade.ID),
		zap.String("user_id", userID),
		zap.String("instrument", trade.Symbol()),
		zap.Float64p("pnl", trade.Pnl))
	return trade, nil
}

// Update 整体重建分录后更新交易，盈亏缓存同事务刷新
func (s *TradeService) Update(ctx context.Context, userID, id string, req TradeRequest) (*models.Trade, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	trade, tags, err := s.buildTrade(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	trade.ID = existing.ID
	trade.CreatedAt = existing.CreatedAt
	for i := range trade.Entries {
		trade.Entries[i].TradeID = trade.ID
	}
	for i := range trade.Exits {
		trade.Exits[i].TradeID = trade.ID
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tradeRepo.DeleteFills(ctx, trade.ID); err != nil {
			return err
		}
		db := s.tradeRepo.GetDB(ctx)
		if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(trade).Error; err != nil {
			return err
		}
		return db.Model(trade).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade updated",
		zap.String("trade_id", trade.ID),
		zap.String("user_id", userID))
	return trade, nil
}

// Get 获取归属校验过的单条交易
func (s *TradeService) Get(ctx context.Context, userID, id string) (models.Trade, error) {
	trade, err := s.tradeRepo.FindByUserAndID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return trade, xe.ErrTradeNotFound
		}
		return trade, err
	}
	return trade, nil
}

// List 按条件查询交易列表
func (s *TradeService) List(ctx context.Context, userID string, filter repo.TradeFilter) ([]models.Trade, error) {
	return s.tradeRepo.FindByUser(ctx, userID, filter)
}

// Delete 删除交易，分录随外键级联删除
func (s *TradeService) Delete(ctx context.Context, userID, id string) error {
	trade, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tradeRepo.DeleteFills(ctx, trade.ID); err != nil {
			return err
		}
		db := s.tradeRepo.GetDB(ctx)
		if err := db.Model(&trade).Association("Tags").Clear(); err != nil {
			return err
		}
		return s.tradeRepo.DeleteById(ctx, trade.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("trade deleted",
		zap.String("trade_id", id),
		zap.String("user_id", userID))
	return nil
}

// RefreshAllPnl 全量重算盈亏缓存，夜间任务以及品种点值变更后调用
func (s *TradeService) RefreshAllPnl(ctx context.Context) (int, error) {
	trades, err := s.tradeRepo.FindAllWithFills(ctx)
	if err != nil {
		return 0, err
	}
	var updated int
	for i := range trades {
		t := &trades[i]
		before := t.Pnl
		t.CalculateAndStorePnl()
		if t.Pnl == nil {
			continue
		}
		if before != nil && *before == *t.Pnl {
			continue
		}
		if err := s.tradeRepo.UpdatePnl(ctx, t.ID, *t.Pnl); err != nil {
			return updated, err
		}
		updated++
	}
	if updated > 0 {
		s.logger.Info("pnl cache refreshed", zap.Int("updated", updated))
	}
	return updated, nil
}
