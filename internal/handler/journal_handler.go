package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JournalHandler 每日日志与 P12 场景处理器
type JournalHandler struct {
	logger         *zap.Logger
	journalService *service.JournalService
}

// NewJournalHandler 创建日志处理器
func NewJournalHandler(logger *zap.Logger, journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{
		logger:         logger,
		journalService: journalService,
	}
}

// List 日志列表，支持日期范围
// GET /api/journals
func (h *JournalHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var start, end *time.Time
	if v := c.QueryParam("start_date"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			start = &t
		}
	}
	if v := c.QueryParam("end_date"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			end = &t
		}
	}

	journals, err := h.journalService.List(ctx, userID, start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, journals)
}

// GetByDate 按日期获取日志
// GET /api/journals/:date
func (h *JournalHandler) GetByDate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	date, err := time.Parse(time.DateOnly, c.Param("date"))
	if err != nil {
		return xe.ErrInvalidParams
	}
	journal, err := h.journalService.Get(ctx, userID, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, journal)
}

// Upsert 写入日志，按 (用户, 日期) 覆盖
// POST /api/journals
func (h *JournalHandler) Upsert(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.DailyJournalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	journal, err := h.journalService.Upsert(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, journal)
}

// Delete 删除日志
// DELETE /api/journals/:id
func (h *JournalHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	if err := h.journalService.Delete(ctx, userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "delete success",
	})
}

// ListScenarios P12 场景参考资料
// GET /api/p12-scenarios
func (h *JournalHandler) ListScenarios(c echo.Context) error {
	ctx := c.Request().Context()

	scenarios, err := h.journalService.ListScenarios(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scenarios)
}

// GetScenario 单个 P12 场景
// GET /api/p12-scenarios/:id
func (h *JournalHandler) GetScenario(c echo.Context) error {
	ctx := c.Request().Context()

	scenario, err := h.journalService.GetScenario(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scenario)
}

// CreateScenario 创建 P12 场景
// POST /api/admin/p12-scenarios
func (h *JournalHandler) CreateScenario(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.P12ScenarioRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	scenario, err := h.journalService.CreateScenario(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scenario)
}

// UpdateScenario 更新 P12 场景
// PUT /api/admin/p12-scenarios/:id
func (h *JournalHandler) UpdateScenario(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.P12ScenarioRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	scenario, err := h.journalService.UpdateScenario(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scenario)
}

// RegisterRoutes 注册路由
func (h *JournalHandler) RegisterRoutes(g *echo.Group) {
	journals := g.Group("/journals")
	journals.GET("", h.List)
	journals.POST("", h.Upsert)
	journals.GET("/:date", h.GetByDate)
	journals.DELETE("/:id", h.Delete)

	scenarios := g.Group("/p12-scenarios")
	scenarios.GET("", h.ListScenarios)
	scenarios.GET("/:id", h.GetScenario)
}

// RegisterAdminRoutes 管理路由
func (h *JournalHandler) RegisterAdminRoutes(g *echo.Group) {
	scenarios := g.Group("/p12-scenarios")
	scenarios.POST("", h.CreateScenario)
	scenarios.PUT("/:id", h.UpdateScenario)
}
