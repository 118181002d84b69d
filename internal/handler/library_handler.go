package handler

import (
	"net/http"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// LibraryHandler 交易模型与标签库处理器
type LibraryHandler struct {
	logger       *zap.Logger
	modelService *service.TradingModelService
	tagService   *service.TagService
}

// NewLibraryHandler 创建模型与标签处理器
func NewLibraryHandler(
	logger *zap.Logger,
	modelService *service.TradingModelService,
	tagService *service.TagService,
) *LibraryHandler {
	return &LibraryHandler{
		logger:       logger,
		modelService: modelService,
		tagService:   tagService,
	}
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == models.RoleAdmin
}

// ListModels 交易模型列表，active=true 时只返回激活的
// GET /api/trading-models
func (h *LibraryHandler) ListModels(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	if cast.ToBool(c.QueryParam("active")) {
		items, err := h.modelService.ListActive(ctx, userID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}
	items, err := h.modelService.List(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GetModel 单个交易模型
// GET /api/trading-models/:id
func (h *LibraryHandler) GetModel(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	item, err := h.modelService.Get(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// CreateModel 创建交易模型
// POST /api/trading-models
func (h *LibraryHandler) CreateModel(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TradingModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.modelService.Create(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateModel 更新交易模型
// PUT /api/trading-models/:id
func (h *LibraryHandler) UpdateModel(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TradingModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.modelService.Update(ctx, userID, c.Param("id"), req, isAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteModel 删除交易模型
// DELETE /api/trading-models/:id
func (h *LibraryHandler) DeleteModel(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	if err := h.modelService.Delete(ctx, userID, c.Param("id"), isAdmin(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "delete success",
	})
}

// ListTags 用户可见的标签
// GET /api/tags
func (h *LibraryHandler) ListTags(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	tags, err := h.tagService.List(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateTag 创建标签
// POST /api/tags
func (h *LibraryHandler) CreateTag(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, err := h.tagService.Create(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// UpdateTag 更新标签
// PUT /api/tags/:id
func (h *LibraryHandler) UpdateTag(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, err := h.tagService.Update(ctx, userID, c.Param("id"), req, isAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag 删除标签
// DELETE /api/tags/:id
func (h *LibraryHandler) DeleteTag(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	if err := h.tagService.Delete(ctx, userID, c.Param("id"), isAdmin(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "delete success",
	})
}

// RegisterRoutes 注册路由
func (h *LibraryHandler) RegisterRoutes(g *echo.Group) {
	tradingModels := g.Group("/trading-models")
	tradingModels.GET("", h.ListModels)
	tradingModels.POST("", h.CreateModel)
	tradingModels.GET("/:id", h.GetModel)
	tradingModels.PUT("/:id", h.UpdateModel)
	tradingModels.DELETE("/:id", h.DeleteModel)

	tags := g.Group("/tags")
	tags.GET("", h.ListTags)
	tags.POST("", h.CreateTag)
	tags.PUT("/:id", h.UpdateTag)
	tags.DELETE("/:id", h.DeleteTag)
}
