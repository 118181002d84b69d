package models

import (
	"time"

	"gorm.io/datatypes"
)

// TradingModel 交易模型（策略定义），分析时作为按模型汇总的分组键
type TradingModel struct {
	ID       string `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID   string `gorm:"type:varchar(26);not null;uniqueIndex:uq_user_model_name;index" json:"user_id"`
	Name     string `gorm:"type:varchar(150);not null;uniqueIndex:uq_user_model_name" json:"name"`
	Version  string `gorm:"type:varchar(50)" json:"version"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	// 模型逻辑
	OverviewLogic    string `gorm:"type:text" json:"overview_logic"`
	PrimaryChartTf   string `gorm:"type:varchar(50)" json:"primary_chart_tf"`
	ExecutionChartTf string `gorm:"type:varchar(50)" json:"execution_chart_tf"`
	ContextChartTf   string `gorm:"type:varchar(50)" json:"context_chart_tf"`

	// 进出场策略
	EntryTriggerDescription string   `gorm:"type:text" json:"entry_trigger_description"`
	StopLossStrategy        string   `gorm:"type:text" json:"stop_loss_strategy"`
	TakeProfitStrategy      string   `gorm:"type:text" json:"take_profit_strategy"`
	MinRiskRewardRatio      *float64 `json:"min_risk_reward_ratio"`

	// 仓位与风险管理
	PositionSizingRules string         `gorm:"type:text" json:"position_sizing_rules"`
	PreTradeChecklist   datatypes.JSON `gorm:"type:json" json:"pre_trade_checklist"` // 检查项数组

	// 模型评估
	Strengths            string `gorm:"type:text" json:"strengths"`
	Weaknesses           string `gorm:"type:text" json:"weaknesses"`
	RefinementsLearnings string `gorm:"type:text" json:"refinements_learnings"`

	IsDefault bool      `gorm:"not null;default:false;index" json:"is_default"` // 系统默认模型，由管理员预置
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (TradingModel) TableName() string {
	return "trading_models"
}
