package repo

import (
	"context"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewP12ScenarioRepo(db *gorm.DB) *P12ScenarioRepo {
	return &P12ScenarioRepo{
		Repository: orz.NewRepository[models.P12Scenario, string](db),
	}
}

type P12ScenarioRepo struct {
	orz.Repository[models.P12Scenario, string]
}

// FindAllActive 激活的场景，按编号排序
func (r P12ScenarioRepo) FindAllActive(ctx context.Context) ([]models.P12Scenario, error) {
	var items []models.P12Scenario
	db := r.GetDB(ctx)
	err := db.Model(&models.P12Scenario{}).
		Where("is_active = ?", true).
		Order("scenario_number ASC").
		Find(&items).Error
	return items, err
}

// FindByNumber 按场景编号查找
func (r P12ScenarioRepo) FindByNumber(ctx context.Context, number string) (m models.P12Scenario, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.P12Scenario{}).
		Where("scenario_number = ?", number).
		First(&m).Error
	return m, err
}
