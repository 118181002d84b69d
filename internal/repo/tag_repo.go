package repo

import (
	"context"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{
		Repository: orz.NewRepository[models.Tag, string](db),
	}
}

type TagRepo struct {
	orz.Repository[models.Tag, string]
}

// FindVisibleToUser 用户可见的标签：默认标签加上自己创建的
func (r TagRepo) FindVisibleToUser(ctx context.Context, userID string) ([]models.Tag, error) {
	var tags []models.Tag
	db := r.GetDB(ctx)
	err := db.Model(&models.Tag{}).
		Where("is_active = ?", true).
		Where("user_id IS NULL OR user_id = ?", userID).
		Order("category ASC, name ASC").
		Find(&tags).Error
	return tags, err
}

// FindDefaults 全部内置标签
func (r TagRepo) FindDefaults(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	db := r.GetDB(ctx)
	err := db.Model(&models.Tag{}).
		Where("is_default = ?", true).
		Order("category ASC, name ASC").
		Find(&tags).Error
	return tags, err
}

// FindByNameForUser 同名去重检查，默认标签与用户标签共用命名空间
func (r TagRepo) FindByNameForUser(ctx context.Context, userID, name string) (m models.Tag, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.Tag{}).
		Where("name = ?", name).
		Where("user_id IS NULL OR user_id = ?", userID).
		First(&m).Error
	return m, err
}

// FindByIDsVisibleToUser 校验标签归属后按 ID 批量取
func (r TagRepo) FindByIDsVisibleToUser(ctx context.Context, userID string, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	db := r.GetDB(ctx)
	err := db.Model(&models.Tag{}).
		Where("id IN ?", ids).
		Where("user_id IS NULL OR user_id = ?", userID).
		Find(&tags).Error
	return tags, err
}

// CountDefaults 内置标签数量，用于首次启动判断是否需要播种
func (r TagRepo) CountDefaults(ctx context.Context) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Model(&models.Tag{}).
		Where("is_default = ?", true).
		Count(&count).Error
	return count, err
}
