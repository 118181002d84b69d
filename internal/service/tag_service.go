package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TagService 标签管理，内置标签全员可见，用户标签只有本人可见
type TagService struct {
	*orz.Service
	logger  *zap.Logger
	tagRepo *repo.TagRepo
}

func NewTagService(logger *zap.Logger, db *gorm.DB) *TagService {
	return &TagService{
		Service: orz.NewService(db),
		logger:  logger,
		tagRepo: repo.NewTagRepo(db),
	}
}

// TagRequest 标签创建/更新请求
type TagRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Category      string `json:"category" validate:"required"`
	ColorCategory string `json:"color_category" validate:"omitempty,oneof=good bad neutral"`
	IsActive      *bool  `json:"is_active"`
}

func validCategory(category string) bool {
	switch models.TagCategory(category) {
	case models.TagCategorySetupStrategy,
		models.TagCategoryMarketCond,
		models.TagCategoryExecution,
		models.TagCategoryPsychological:
		return true
	}
	return false
}

// List 用户可见的标签
func (s *TagService) List(ctx context.Context, userID string) ([]models.Tag, error) {
	return s.tagRepo.FindVisibleToUser(ctx, userID)
}

// Create 创建用户标签，同名（含内置）拒绝
func (s *TagService) Create(ctx context.Context, userID string, req TagRequest) (models.Tag, error) {
	if !validCategory(req.Category) {
		return models.Tag{}, xe.ErrInvalidParams
	}
	name := strings.TrimSpace(req.Name)
	if _, err := s.tagRepo.FindByNameForUser(ctx, userID, name); err == nil {
		return models.Tag{}, xe.ErrTagNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tag{}, err
	}

	color := req.ColorCategory
	if color == "" {
		color = models.TagColorNeutral
	}
	tag := models.Tag{
		ID:            ulid.Make().String(),
		Name:          name,
		Category:      models.TagCategory(req.Category),
		UserID:        &userID,
		IsDefault:     false,
		IsActive:      true,
		ColorCategory: color,
	}
	if err := s.tagRepo.Create(ctx, &tag); err != nil {
		return models.Tag{}, err
	}
	s.logger.Info("tag created",
		zap.String("name", name),
		zap.String("user_id", userID))
	return tag, nil
}

// Update 更新用户自己的标签，内置标签仅管理员可改
func (s *TagService) Update(ctx context.Context, userID, id string, req TagRequest, isAdmin bool) (models.Tag, error) {
	tag, err := s.tagRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tag, xe.ErrTagNotFound
		}
		return tag, err
	}
	if tag.IsDefault {
		if !isAdmin {
			return tag, xe.ErrPermissionDenied
		}
	} else if tag.UserID == nil || *tag.UserID != userID {
		return tag, xe.ErrPermissionDenied
	}
	if !validCategory(req.Category) {
		return tag, xe.ErrInvalidParams
	}

	name := strings.TrimSpace(req.Name)
	if name != tag.Name {
		if _, err := s.tagRepo.FindByNameForUser(ctx, userID, name); err == nil {
			return tag, xe.ErrTagNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return tag, err
		}
	}

	tag.Name = name
	tag.Category = models.TagCategory(req.Category)
	if req.ColorCategory != "" {
		tag.ColorCategory = req.ColorCategory
	}
	if req.IsActive != nil {
		tag.IsActive = *req.IsActive
	}
	if err := s.tagRepo.Save(ctx, &tag); err != nil {
		return tag, err
	}
	return tag, nil
}

// Delete 删除用户自己的标签，关联关系随之清除
func (s *TagService) Delete(ctx context.Context, userID, id string, isAdmin bool) error {
	tag, err := s.tagRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrTagNotFound
		}
		return err
	}
	if tag.IsDefault {
		if !isAdmin {
			return xe.ErrPermissionDenied
		}
	} else if tag.UserID == nil || *tag.UserID != userID {
		return xe.ErrPermissionDenied
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		db := s.tagRepo.GetDB(ctx)
		if err := db.Exec("DELETE FROM trade_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return s.tagRepo.DeleteById(ctx, id)
	})
}

// 内置标签清单，按分类预置
var defaultTags = map[models.TagCategory][]struct {
	Name  string
	Color string
}{
	models.TagCategorySetupStrategy: {
		{"Breakout", models.TagColorNeutral},
		{"Reversal", models.TagColorNeutral},
		{"Trend Continuation", models.TagColorNeutral},
		{"Range Play", models.TagColorNeutral},
		{"News Play", models.TagColorNeutral},
		{"Opening Drive", models.TagColorNeutral},
	},
	models.TagCategoryMarketCond: {
		{"Trending Market", models.TagColorNeutral},
		{"Choppy Market", models.TagColorNeutral},
		{"High Volatility", models.TagColorNeutral},
		{"Low Volatility", models.TagColorNeutral},
		{"Pre-News", models.TagColorNeutral},
		{"Post-News", models.TagColorNeutral},
	},
	models.TagCategoryExecution: {
		{"Followed Plan", models.TagColorGood},
		{"Early Entry", models.TagColorBad},
		{"Late Entry", models.TagColorBad},
		{"Moved Stop", models.TagColorBad},
		{"Partial Profits Taken", models.TagColorGood},
		{"Let Winner Run", models.TagColorGood},
		{"Cut Loss Quickly", models.TagColorGood},
	},
	models.TagCategoryPsychological: {
		{"Disciplined", models.TagColorGood},
		{"Patient", models.TagColorGood},
		{"FOMO", models.TagColorBad},
		{"Revenge Trading", models.TagColorBad},
		{"Overtrading", models.TagColorBad},
		{"Hesitation", models.TagColorBad},
		{"Confident", models.TagColorGood},
	},
}

// EnsureDefaults 首次启动播种内置标签
func (s *TagService) EnsureDefaults(ctx context.Context) error {
	count, err := s.tagRepo.CountDefaults(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.Transaction(ctx, func(ctx context.Context) error {
		var total int
		for category, entries := range defaultTags {
			for _, entry := range entries {
				tag := models.Tag{
					ID:            ulid.Make().String(),
					Name:          entry.Name,
					Category:      category,
					UserID:        nil,
					IsDefault:     true,
					IsActive:      true,
					ColorCategory: entry.Color,
				}
				if err := s.tagRepo.Create(ctx, &tag); err != nil {
					return err
				}
				total++
			}
		}
		s.logger.Info("default tags seeded", zap.Int("count", total))
		return nil
	})
}
