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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TradingModelService 交易模型管理
type TradingModelService struct {
	*orz.Service
	logger    *zap.Logger
	modelRepo *repo.TradingModelRepo
}

func NewTradingModelService(logger *zap.Logger, db *gorm.DB) *TradingModelService {
	return &TradingModelService{
		Service:   orz.NewService(db),
		logger:    logger,
		modelRepo: repo.NewTradingModelRepo(db),
	}
}

// TradingModelRequest 模型创建/更新请求
type TradingModelRequest struct {
	Name                    string         `json:"name" validate:"required,max=128"`
	Version                 string         `json:"version"`
	IsActive                *bool          `json:"is_active"`
	OverviewLogic           string         `json:"overview_logic"`
	PrimaryChartTF          string         `json:"primary_chart_tf"`
	ExecutionChartTF        string         `json:"execution_chart_tf"`
	ContextChartTF          string         `json:"context_chart_tf"`
	EntryTriggerDescription string         `json:"entry_trigger_description"`
	StopLossStrategy        string         `json:"stop_loss_strategy"`
	TakeProfitStrategy      string         `json:"take_profit_strategy"`
	MinRiskRewardRatio      *float64       `json:"min_risk_reward_ratio"`
	PositionSizingRules     string         `json:"position_sizing_rules"`
	PreTradeChecklist       datatypes.JSON `json:"pre_trade_checklist"`
	Strengths               string         `json:"strengths"`
	Weaknesses              string         `json:"weaknesses"`
	RefinementsLearnings    string         `json:"refinements_learnings"`
}

// List 用户可见的模型，内置在前
func (s *TradingModelService) List(ctx context.Context, userID string) ([]models.TradingModel, error) {
	return s.modelRepo.FindVisibleToUser(ctx, userID)
}

// ListActive 可用于记录交易的激活模型
func (s *TradingModelService) ListActive(ctx context.Context, userID string) ([]models.TradingModel, error) {
	return s.modelRepo.FindActiveByUser(ctx, userID)
}

// Get 获取模型，私有模型校验归属
func (s *TradingModelService) Get(ctx context.Context, userID, id string) (models.TradingModel, error) {
	item, err := s.modelRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, xe.ErrModelNotFound
		}
		return item, err
	}
	if !item.IsDefault && item.UserID != userID {
		return item, xe.ErrPermissionDenied
	}
	return item, nil
}

// Create 创建模型，同用户下名称唯一
func (s *TradingModelService) Create(ctx context.Context, userID string, req TradingModelRequest) (models.TradingModel, error) {
	name := strings.TrimSpace(req.Name)
	if _, err := s.modelRepo.FindByUserAndName(ctx, userID, name); err == nil {
		return models.TradingModel{}, xe.ErrModelNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TradingModel{}, err
	}

	item := models.TradingModel{
		ID:       ulid.Make().String(),
		UserID:   userID,
		Name:     name,
		Version:  req.Version,
		IsActive: true,
	}
	applyModelRequest(&item, req)
	if err := s.modelRepo.Create(ctx, &item); err != nil {
		return models.TradingModel{}, err
	}
	s.logger.Info("trading model created",
		zap.String("name", name),
		zap.String("user_id", userID))
	return item, nil
}

// Update 更新模型，内置模型只有管理员可改
func (s *TradingModelService) Update(ctx context.Context, userID, id string, req TradingModelRequest, isAdmin bool) (models.TradingModel, error) {
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return item, err
	}
	if item.IsDefault && !isAdmin {
		return item, xe.ErrPermissionDenied
	}

	name := strings.TrimSpace(req.Name)
	if name != item.Name {
		if _, err := s.modelRepo.FindByUserAndName(ctx, item.UserID, name); err == nil {
			return item, xe.ErrModelNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return item, err
		}
	}

	item.Name = name
	item.Version = req.Version
	applyModelRequest(&item, req)
	if err := s.modelRepo.Save(ctx, &item); err != nil {
		return item, err
	}
	s.logger.Info("trading model updated", zap.String("name", name))
	return item, nil
}

func applyModelRequest(item *models.TradingModel, req TradingModelRequest) {
	item.OverviewLogic = req.OverviewLogic
	item.PrimaryChartTf = req.PrimaryChartTF
	item.ExecutionChartTf = req.ExecutionChartTF
	item.ContextChartTf = req.ContextChartTF
	item.EntryTriggerDescription = req.EntryTriggerDescription
	item.StopLossStrategy = req.StopLossStrategy
	item.TakeProfitStrategy = req.TakeProfitStrategy
	item.MinRiskRewardRatio = req.MinRiskRewardRatio
	item.PositionSizingRules = req.PositionSizingRules
	item.PreTradeChecklist = req.PreTradeChecklist
	item.Strengths = req.Strengths
	item.Weaknesses = req.Weaknesses
	item.RefinementsLearnings = req.RefinementsLearnings
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

// Delete 删除模型，被交易引用时拒绝（改为停用）
func (s *TradingModelService) Delete(ctx context.Context, userID, id string, isAdmin bool) error {
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if item.IsDefault && !isAdmin {
		return xe.ErrPermissionDenied
	}
	count, err := s.modelRepo.CountReferencingTrades(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return xe.ErrModelReferenced
	}
	if err := s.modelRepo.DeleteById(ctx, id); err != nil {
		return err
	}
	s.logger.Info("trading model deleted", zap.String("name", item.Name))
	return nil
}
