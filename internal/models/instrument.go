package models

import (
	"time"
)

// Instrument 合约品种（点值、最小跳动等合约规格）
type Instrument struct {
	ID           string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Symbol       string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"symbol"` // 品种代码，统一大写
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`              // 品种名称
	Exchange     string    `gorm:"type:varchar(50)" json:"exchange"`                    // 交易所
	AssetClass   string    `gorm:"type:varchar(50);index" json:"asset_class"`           // 资产类别
	ProductGroup string    `gorm:"type:varchar(50)" json:"product_group"`               // 产品分组
	PointValue   float64   `gorm:"type:decimal(20,8);not null" json:"point_value"`      // 每点价值（货币单位/点/手）
	TickSize     float64   `gorm:"type:decimal(20,8)" json:"tick_size"`                 // 最小价格跳动
	Currency     string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"` // 软停用标记，历史交易仍可引用
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Instrument) TableName() string {
	return "instruments"
}
