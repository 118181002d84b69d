package models

import "time"

// P12Scenario P12 场景参考资料（06:00-08:30 EST 的五种核心形态）
type P12Scenario struct {
	ID             string `gorm:"primaryKey;type:varchar(26)" json:"id"`
	ScenarioNumber string `gorm:"type:varchar(5);uniqueIndex;not null" json:"scenario_number"`
	ScenarioName   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"scenario_name"`

	ShortDescription    string `gorm:"type:varchar(200);not null" json:"short_description"`
	DetailedDescription string `gorm:"type:text;not null" json:"detailed_description"`

	HodLodImplication string `gorm:"type:text;not null" json:"hod_lod_implication"` // HOD/LOD 可能出现的位置
	DirectionalBias   string `gorm:"type:varchar(50)" json:"directional_bias"`      // bullish/bearish/neutral/choppy

	AlertCriteria        string `gorm:"type:text;not null" json:"alert_criteria"`
	ConfirmationCriteria string `gorm:"type:text;not null" json:"confirmation_criteria"`

	EntryStrategy  string `gorm:"type:text;not null" json:"entry_strategy"`
	TypicalTargets string `gorm:"type:text" json:"typical_targets"`

	StopLossGuidance string   `gorm:"type:text" json:"stop_loss_guidance"`
	RiskPercentage   *float64 `json:"risk_percentage"` // 如 0.35、0.50

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (P12Scenario) TableName() string {
	return "p12_scenarios"
}
