package service

import (
	"context"
	"testing"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTagSeedAndVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewTagService(zap.NewNop(), newTestDB(t))

	require.NoError(t, svc.EnsureDefaults(ctx))
	require.NoError(t, svc.EnsureDefaults(ctx)) // 幂等

	tags, err := svc.List(ctx, "01USER")
	require.NoError(t, err)
	require.NotEmpty(t, tags)

	categories := map[models.TagCategory]bool{}
	for _, tag := range tags {
		assert.True(t, tag.IsDefault)
		categories[tag.Category] = true
	}
	assert.Len(t, categories, 4)
}

func TestTagUserScopedCreation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewTagService(zap.NewNop(), newTestDB(t))

	created, err := svc.Create(ctx, "01USER", TagRequest{
		Name:     "My Setup",
		Category: string(models.TagCategorySetupStrategy),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TagColorNeutral, created.ColorCategory)

	// 同名拒绝
	_, err = svc.Create(ctx, "01USER", TagRequest{
		Name:     "My Setup",
		Category: string(models.TagCategorySetupStrategy),
	})
	assert.ErrorIs(t, err, xe.ErrTagNameExists)

	// 其他用户看不到
	other, err := svc.List(ctx, "02OTHER")
	require.NoError(t, err)
	assert.Empty(t, other)

	// 非法分类拒绝
	_, err = svc.Create(ctx, "01USER", TagRequest{Name: "X", Category: "Nope"})
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
}

func TestTagPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewTagService(zap.NewNop(), newTestDB(t))

	created, err := svc.Create(ctx, "01USER", TagRequest{
		Name:     "Private",
		Category: string(models.TagCategoryExecution),
	})
	require.NoError(t, err)

	// 非归属用户不能改删
	_, err = svc.Update(ctx, "02OTHER", created.ID, TagRequest{
		Name:     "Hijacked",
		Category: string(models.TagCategoryExecution),
	}, false)
	assert.ErrorIs(t, err, xe.ErrPermissionDenied)

	err = svc.Delete(ctx, "02OTHER", created.ID, false)
	assert.ErrorIs(t, err, xe.ErrPermissionDenied)

	require.NoError(t, svc.Delete(ctx, "01USER", created.ID, false))
}
