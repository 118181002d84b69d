package repo

import (
	"context"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewDailyJournalRepo(db *gorm.DB) *DailyJournalRepo {
	return &DailyJournalRepo{
		Repository: orz.NewRepository[models.DailyJournal, string](db),
	}
}

type DailyJournalRepo struct {
	orz.Repository[models.DailyJournal, string]
}

// FindByUserAndDate 每个用户每天至多一篇日志
func (r DailyJournalRepo) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (m models.DailyJournal, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.DailyJournal{}).
		Where("user_id = ? AND journal_date = ?", userID, date).
		Preload("P12Scenario").
		First(&m).Error
	return m, err
}

// FindByUser 用户的日志列表，按日期倒序
func (r DailyJournalRepo) FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]models.DailyJournal, error) {
	var items []models.DailyJournal
	db := r.GetDB(ctx).Model(&models.DailyJournal{}).Where("user_id = ?", userID)
	if start != nil {
		db = db.Where("journal_date >= ?", *start)
	}
	if end != nil {
		db = db.Where("journal_date <= ?", *end)
	}
	err := db.
		Preload("P12Scenario").
		Order("journal_date DESC").
		Find(&items).Error
	return items, err
}

// FindByUserAndID 归属校验过的单篇日志
func (r DailyJournalRepo) FindByUserAndID(ctx context.Context, userID, id string) (m models.DailyJournal, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.DailyJournal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("P12Scenario").
		First(&m).Error
	return m, err
}
