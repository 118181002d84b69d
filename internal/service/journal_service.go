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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JournalService 每日日志与 P12 场景
type JournalService struct {
	*orz.Service
	logger       *zap.Logger
	journalRepo  *repo.DailyJournalRepo
	scenarioRepo *repo.P12ScenarioRepo
}

func NewJournalService(logger *zap.Logger, db *gorm.DB) *JournalService {
	return &JournalService{
		Service:      orz.NewService(db),
		logger:       logger,
		journalRepo:  repo.NewDailyJournalRepo(db),
		scenarioRepo: repo.NewP12ScenarioRepo(db),
	}
}

// DailyJournalRequest 日志写入请求，按日 upsert
type DailyJournalRequest struct {
	JournalDate string `json:"journal_date" validate:"required"` // YYYY-MM-DD

	KeyEventsToday         string `json:"key_events_today"`
	KeyTasksToday          string `json:"key_tasks_today"`
	OnMyMind               string `json:"on_my_mind"`
	ImportantFocusToday    string `json:"important_focus_today"`
	MentalFeelingRating    *int   `json:"mental_feeling_rating" validate:"omitempty,min=1,max=5"`
	MentalMindRating       *int   `json:"mental_mind_rating" validate:"omitempty,min=1,max=5"`
	MentalEnergyRating     *int   `json:"mental_energy_rating" validate:"omitempty,min=1,max=5"`
	MentalMotivationRating *int   `json:"mental_motivation_rating" validate:"omitempty,min=1,max=5"`

	P12ScenarioID       *string  `json:"p12_scenario_id"`
	P12High             *float64 `json:"p12_high"`
	P12Mid              *float64 `json:"p12_mid"`
	P12Low              *float64 `json:"p12_low"`
	P12ExpectedOutcomes string   `json:"p12_expected_outcomes"`
	P12Notes            string   `json:"p12_notes"`

	Sessions datatypes.JSON `json:"sessions"`

	Adr10DayMedianRange      *float64 `json:"adr_10_day_median_range"`
	TodaysTotalRangePoints   *float64 `json:"todays_total_range_points"`
	RealisticExpectanceNotes string   `json:"realistic_expectance_notes"`
	EngagementStructureNotes string   `json:"engagement_structure_notes"`
	KeyLevelsNotes           string   `json:"key_levels_notes"`
	PreMarketNewsNotes       string   `json:"pre_market_news_notes"`

	MarketObservations   string `json:"market_observations"`
	SelfObservations     string `json:"self_observations"`
	DidWellToday         string `json:"did_well_today"`
	DidNotGoWellToday    string `json:"did_not_go_well_today"`
	LearnedToday         string `json:"learned_today"`
	ImproveActionNextDay string `json:"improve_action_next_day"`

	ReviewPsychDisciplineRating *int `json:"review_psych_discipline_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychMotivationRating *int `json:"review_psych_motivation_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychFocusRating      *int `json:"review_psych_focus_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychMasteryRating    *int `json:"review_psych_mastery_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychComposureRating  *int `json:"review_psych_composure_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychResilienceRating *int `json:"review_psych_resilience_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychMindRating       *int `json:"review_psych_mind_rating" validate:"omitempty,min=1,max=5"`
	ReviewPsychEnergyRating     *int `json:"review_psych_energy_rating" validate:"omitempty,min=1,max=5"`
}

// Upsert 按 (用户, 日期) 写入日志，存在则整体覆盖
func (s *JournalService) Upsert(ctx context.Context, userID string, req DailyJournalRequest) (*models.DailyJournal, error) {
	journalDate, err := time.Parse(time.DateOnly, req.JournalDate)
	if err != nil {
		return nil, xe.ErrInvalidParams
	}
	if req.P12ScenarioID != nil && *req.P12ScenarioID != "" {
		if _, err := s.scenarioRepo.FindById(ctx, *req.P12ScenarioID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, xe.ErrScenarioNotFound
			}
			return nil, err
		}
	}

	journal, err := s.journalRepo.FindByUserAndDate(ctx, userID, journalDate)
	isNew := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		isNew = true
		journal = models.DailyJournal{
			ID:          ulid.Make().String(),
			UserID:      userID,
			JournalDate: journalDate,
		}
	}

	journal.KeyEventsToday = req.KeyEventsToday
	journal.KeyTasksToday = req.KeyTasksToday
	journal.OnMyMind = req.OnMyMind
	journal.ImportantFocusToday = req.ImportantFocusToday
	journal.MentalFeelingRating = req.MentalFeelingRating
	journal.MentalMindRating = req.MentalMindRating
	journal.MentalEnergyRating = req.MentalEnergyRating
	journal.MentalMotivationRating = req.MentalMotivationRating
	journal.P12ScenarioID = req.P12ScenarioID
	journal.P12High = req.P12High
	journal.P12Mid = req.P12Mid
	journal.P12Low = req.P12Low
	journal.P12ExpectedOutcomes = req.P12ExpectedOutcomes
	journal.P12Notes = req.P12Notes
	journal.Sessions = req.Sessions
	journal.Adr10DayMedianRange = req.Adr10DayMedianRange
	journal.TodaysTotalRangePoints = req.TodaysTotalRangePoints
	journal.RealisticExpectanceNotes = req.RealisticExpectanceNotes
	journal.EngagementStructureNotes = req.EngagementStructureNotes
	journal.KeyLevelsNotes = req.KeyLevelsNotes
	journal.PreMarketNewsNotes = req.PreMarketNewsNotes
	journal.MarketObservations = req.MarketObservations
	journal.SelfObservations = req.SelfObservations
	journal.DidWellToday = req.DidWellToday
	journal.DidNotGoWellToday = req.DidNotGoWellToday
	journal.LearnedToday = req.LearnedToday
	journal.ImproveActionNextDay = req.ImproveActionNextDay
	journal.ReviewPsychDisciplineRating = req.ReviewPsychDisciplineRating
	journal.ReviewPsychMotivationRating = req.ReviewPsychMotivationRating
	journal.ReviewPsychFocusRating = req.ReviewPsychFocusRating
	journal.ReviewPsychMasteryRating = req.ReviewPsychMasteryRating
	journal.ReviewPsychComposureRating = req.ReviewPsychComposureRating
	journal.ReviewPsychResilienceRating = req.ReviewPsychResilienceRating
	journal.ReviewPsychMindRating = req.ReviewPsychMindRating
	journal.ReviewPsychEnergyRating = req.ReviewPsychEnergyRating

	if isNew {
		err = s.journalRepo.Create(ctx, &journal)
	} else {
		// 整体覆盖要能把字段清空，结构体 Updates 会跳过零值
		err = s.journalRepo.Save(ctx, &journal)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("daily journal saved",
		zap.String("user_id", userID),
		zap.String("date", req.JournalDate))
	return &journal, nil
}

// Get 按日期获取日志
func (s *JournalService) Get(ctx context.Context, userID string, date time.Time) (models.DailyJournal, error) {
	journal, err := s.journalRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal, xe.ErrJournalNotFound
		}
		return journal, err
	}
	return journal, nil
}

// List 日志列表，可按日期范围过滤
func (s *JournalService) List(ctx context.Context, userID string, start, end *time.Time) ([]models.DailyJournal, error) {
	return s.journalRepo.FindByUser(ctx, userID, start, end)
}

// Delete 删除日志
func (s *JournalService) Delete(ctx context.Context, userID, id string) error {
	journal, err := s.journalRepo.FindByUserAndID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrJournalNotFound
		}
		return err
	}
	return s.journalRepo.DeleteById(ctx, journal.ID)
}

// ListScenarios 激活的 P12 场景
func (s *JournalService) ListScenarios(ctx context.Context) ([]models.P12Scenario, error) {
	return s.scenarioRepo.FindAllActive(ctx)
}

// GetScenario 单个 P12 场景
func (s *JournalService) GetScenario(ctx context.Context, id string) (models.P12Scenario, error) {
	scenario, err := s.scenarioRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scenario, xe.ErrScenarioNotFound
		}
		return scenario, err
	}
	return scenario, nil
}

// P12ScenarioRequest 场景创建/更新请求（管理员）
type P12ScenarioRequest struct {
	ScenarioNumber       string   `json:"scenario_number" validate:"required,max=5"`
	ScenarioName         string   `json:"scenario_name" validate:"required,max=100"`
	ShortDescription     string   `json:"short_description" validate:"required"`
	DetailedDescription  string   `json:"detailed_description" validate:"required"`
	HodLodImplication    string   `json:"hod_lod_implication" validate:"required"`
	DirectionalBias      string   `json:"directional_bias"`
	AlertCriteria        string   `json:"alert_criteria" validate:"required"`
	ConfirmationCriteria string   `json:"confirmation_criteria" validate:"required"`
	EntryStrategy        string   `json:"entry_strategy" validate:"required"`
	TypicalTargets       string   `json:"typical_targets"`
	StopLossGuidance     string   `json:"stop_loss_guidance"`
	RiskPercentage       *float64 `json:"risk_percentage"`
	IsActive             *bool    `json:"is_active"`
}

// CreateScenario 创建 P12 场景
func (s *JournalService) CreateScenario(ctx context.Context, req P12ScenarioRequest) (models.P12Scenario, error) {
	if _, err := s.scenarioRepo.FindByNumber(ctx, req.ScenarioNumber); err == nil {
		return models.P12Scenario{}, xe.ErrInvalidParams
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.P12Scenario{}, err
	}

	scenario := models.P12Scenario{
		ID:       ulid.Make().String(),
		IsActive: true,
	}
	applyScenarioRequest(&scenario, req)
	if err := s.scenarioRepo.Create(ctx, &scenario); err != nil {
		return models.P12Scenario{}, err
	}
	s.logger.Info("p12 scenario created", zap.String("number", req.ScenarioNumber))
	return scenario, nil
}

// UpdateScenario 更新 P12 场景
func (s *JournalService) UpdateScenario(ctx context.Context, id string, req P12ScenarioRequest) (models.P12Scenario, error) {
	scenario, err := s.GetScenario(ctx, id)
	if err != nil {
		return scenario, err
	}
	applyScenarioRequest(&scenario, req)
	if err := s.scenarioRepo.Save(ctx, &scenario); err != nil {
		return scenario, err
	}
	return scenario, nil
}

func applyScenarioRequest(scenario *models.P12Scenario, req P12ScenarioRequest) {
	scenario.ScenarioNumber = req.ScenarioNumber
	scenario.ScenarioName = req.ScenarioName
	scenario.ShortDescription = req.ShortDescription
	scenario.DetailedDescription = req.DetailedDescription
	scenario.HodLodImplication = req.HodLodImplication
	scenario.DirectionalBias = req.DirectionalBias
	scenario.AlertCriteria = req.AlertCriteria
	scenario.ConfirmationCriteria = req.ConfirmationCriteria
	scenario.EntryStrategy = req.EntryStrategy
	scenario.TypicalTargets = req.TypicalTargets
	scenario.StopLossGuidance = req.StopLossGuidance
	scenario.RiskPercentage = req.RiskPercentage
	if req.IsActive != nil {
		scenario.IsActive = *req.IsActive
	}
}
