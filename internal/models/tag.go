package models

import "time"

// TagCategory 标签分类
type TagCategory string

const (
	TagCategorySetupStrategy TagCategory = "Setup & Strategy"
	TagCategoryMarketCond    TagCategory = "Market Conditions"
	TagCategoryExecution     TagCategory = "Execution & Management"
	TagCategoryPsychological TagCategory = "Psychological & Emotional Factors"
)

// 标签的影响分类：用于前端配色与统计分组
const (
	TagColorGood    = "good"
	TagColorBad     = "bad"
	TagColorNeutral = "neutral"
)

// Tag 交易标签，默认标签 UserID 为空，用户标签归属到人
type Tag struct {
	ID            string      `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Name          string      `gorm:"type:varchar(50);not null;uniqueIndex:uq_tag_name_user" json:"name"`
	Category      TagCategory `gorm:"type:varchar(50);not null;index" json:"category"`
	UserID        *string     `gorm:"type:varchar(26);uniqueIndex:uq_tag_name_user;index" json:"user_id"` // 为空表示系统默认标签
	IsDefault     bool        `gorm:"not null;default:false;index" json:"is_default"`
	IsActive      bool        `gorm:"not null;default:true" json:"is_active"`
	ColorCategory string      `gorm:"type:varchar(20);default:'neutral'" json:"color_category"` // good/bad/neutral
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}
