package handler

import (
	"net/http"

	"github.com/dushixiang/tradenote/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// InstrumentHandler 交易品种处理器，写操作仅管理员可用
type InstrumentHandler struct {
	logger            *zap.Logger
	instrumentService *service.InstrumentService
	tradeService      *service.TradeService
}

// NewInstrumentHandler 创建品种处理器
func NewInstrumentHandler(
	logger *zap.Logger,
	instrumentService *service.InstrumentService,
	tradeService *service.TradeService,
) *InstrumentHandler {
	return &InstrumentHandler{
		logger:            logger,
		instrumentService: instrumentService,
		tradeService:      tradeService,
	}
}

// List 品种列表，active=true 时只返回激活的
// GET /api/instruments
func (h *InstrumentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if cast.ToBool(c.QueryParam("active")) {
		items, err := h.instrumentService.ListActive(ctx)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}
	items, err := h.instrumentService.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get 单个品种
// GET /api/instruments/:id
func (h *InstrumentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := h.instrumentService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create 创建品种
// POST /api/admin/instruments
func (h *InstrumentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.InstrumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.instrumentService.Create(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Update 更新品种，点值变更后全量刷新盈亏缓存
// PUT /api/admin/instruments/:id
func (h *InstrumentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.InstrumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	before, err := h.instrumentService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	item, err := h.instrumentService.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}
	if before.PointValue != item.PointValue {
		if _, err := h.tradeService.RefreshAllPnl(ctx); err != nil {
			h.logger.Error("failed to refresh pnl after point value change", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, item)
}

// Delete 删除品种，被引用时返回错误提示改为停用
// DELETE /api/admin/instruments/:id
func (h *InstrumentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.instrumentService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "delete success",
	})
}

// SetActive 停用/启用品种
// PUT /api/admin/instruments/:id/active
func (h *InstrumentHandler) SetActive(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := h.instrumentService.SetActive(ctx, c.Param("id"), req.IsActive); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "update success",
	})
}

// RegisterRoutes 只读路由，所有登录用户可用
func (h *InstrumentHandler) RegisterRoutes(g *echo.Group) {
	instruments := g.Group("/instruments")
	instruments.GET("", h.List)
	instruments.GET("/:id", h.Get)
}

// RegisterAdminRoutes 管理路由
func (h *InstrumentHandler) RegisterAdminRoutes(g *echo.Group) {
	instruments := g.Group("/instruments")
	instruments.POST("", h.Create)
	instruments.PUT("/:id", h.Update)
	instruments.PUT("/:id/active", h.SetActive)
	instruments.DELETE("/:id", h.Delete)
}
