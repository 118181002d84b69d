package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionAnalysis 单个交易时段的盘中分析（Asia/London/NY1/NY2）
type SessionAnalysis struct {
	Direction       string   `json:"direction"`        // Bullish/Bearish/None
	SessionStatus   string   `json:"session_status"`   // True/False/Broken
	ModelStatus     string   `json:"model_status"`     // Valid/Broken
	RangePoints     *float64 `json:"range_points"`     // 实际波动点数
	RangePercentage *float64 `json:"range_percentage"` // 相对中位波动的百分比
	Note            string   `json:"note"`
}

// DailyJournal 每日日志：盘前准备、P12 分析、时段分析与盘后复盘
type DailyJournal struct {
	ID          string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID      string    `gorm:"type:varchar(26);not null;uniqueIndex:uq_user_journal_date;index" json:"user_id"`
	JournalDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_user_journal_date" json:"journal_date"`

	// 盘前准备（心理状态）
	KeyEventsToday         string `gorm:"type:text" json:"key_events_today"`
	KeyTasksToday          string `gorm:"type:text" json:"key_tasks_today"`
	OnMyMind               string `gorm:"type:text" json:"on_my_mind"`
	ImportantFocusToday    string `gorm:"type:text" json:"important_focus_today"`
	MentalFeelingRating    *int   `json:"mental_feeling_rating"`    // 1-5
	MentalMindRating       *int   `json:"mental_mind_rating"`       // 1-5
	MentalEnergyRating     *int   `json:"mental_energy_rating"`     // 1-5
	MentalMotivationRating *int   `json:"mental_motivation_rating"` // 1-5

	// 盘前分析（P12）
	P12ScenarioID       *string      `gorm:"type:varchar(26)" json:"p12_scenario_id"`
	P12Scenario         *P12Scenario `gorm:"foreignKey:P12ScenarioID" json:"p12_scenario,omitempty"`
	P12High             *float64     `gorm:"type:decimal(10,2)" json:"p12_high"`
	P12Mid              *float64     `gorm:"type:decimal(10,2)" json:"p12_mid"`
	P12Low              *float64     `gorm:"type:decimal(10,2)" json:"p12_low"`
	P12ExpectedOutcomes string       `gorm:"type:text" json:"p12_expected_outcomes"`
	P12Notes            string       `gorm:"type:text" json:"p12_notes"`

	// 时段分析，键为 asia/london/ny1/ny2
	Sessions datatypes.JSON `gorm:"type:json" json:"sessions"`

	// 现实波动预期
	Adr10DayMedianRange      *float64 `json:"adr_10_day_median_range"`
	TodaysTotalRangePoints   *float64 `json:"todays_total_range_points"`
	RealisticExpectanceNotes string   `gorm:"type:text" json:"realistic_expectance_notes"`
	EngagementStructureNotes string   `gorm:"type:text" json:"engagement_structure_notes"`
	KeyLevelsNotes           string   `gorm:"type:text" json:"key_levels_notes"`
	PreMarketNewsNotes       string   `gorm:"type:text" json:"pre_market_news_notes"`

	// 盘后观察与复盘
	MarketObservations   string `gorm:"type:text" json:"market_observations"`
	SelfObservations     string `gorm:"type:text" json:"self_observations"`
	DidWellToday         string `gorm:"type:text" json:"did_well_today"`
	DidNotGoWellToday    string `gorm:"type:text" json:"did_not_go_well_today"`
	LearnedToday         string `gorm:"type:text" json:"learned_today"`
	ImproveActionNextDay string `gorm:"type:text" json:"improve_action_next_day"`

	// 每日心理复盘评分（1-5）
	ReviewPsychDisciplineRating *int `json:"review_psych_discipline_rating"`
	ReviewPsychMotivationRating *int `json:"review_psych_motivation_rating"`
	ReviewPsychFocusRating      *int `json:"review_psych_focus_rating"`
	ReviewPsychMasteryRating    *int `json:"review_psych_mastery_rating"`
	ReviewPsychComposureRating  *int `json:"review_psych_composure_rating"`
	ReviewPsychResilienceRating *int `json:"review_psych_resilience_rating"`
	ReviewPsychMindRating       *int `json:"review_psych_mind_rating"`
	ReviewPsychEnergyRating     *int `json:"review_psych_energy_rating"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyJournal) TableName() string {
	return "daily_journals"
}

// AverageReviewPsychRating 心理复盘评分均值，忽略未填与超出 1-5 的值
func (j *DailyJournal) AverageReviewPsychRating() *float64 {
	ratings := []*int{
		j.ReviewPsychDisciplineRating, j.ReviewPsychMotivationRating,
		j.ReviewPsychFocusRating, j.ReviewPsychMasteryRating,
		j.ReviewPsychComposureRating, j.ReviewPsychResilienceRating,
		j.ReviewPsychMindRating, j.ReviewPsychEnergyRating,
	}
	var sum, count int
	for _, r := range ratings {
		if r != nil && *r >= 1 && *r <= 5 {
			sum += *r
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}
