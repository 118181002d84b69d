package repo

import (
	"context"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{
		Repository: orz.NewRepository[models.User, string](db),
	}
}

type UserRepo struct {
	orz.Repository[models.User, string]
}

// FindByUsername 按用户名查找
func (r UserRepo) FindByUsername(ctx context.Context, username string) (m models.User, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.User{}).Where("username = ?", username).First(&m).Error
	return m, err
}

// FindByEmail 按邮箱查找
func (r UserRepo) FindByEmail(ctx context.Context, email string) (m models.User, err error) {
	db := r.GetDB(ctx)
	err = db.Model(&models.User{}).Where("email = ?", email).First(&m).Error
	return m, err
}

// ExistsByUsername 用户名是否已占用
func (r UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// UpdateLastLogin 记录最近登录时间与 IP
func (r UserRepo) UpdateLastLogin(ctx context.Context, id, ip string) error {
	db := r.GetDB(ctx)
	return db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"last_login_ip": ip,
		}).Error
}

// CountAdmins 管理员数量，用于首次启动引导
func (r UserRepo) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error
	return count, err
}
