package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradenote/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// AnalyticsHandler 绩效分析处理器
type AnalyticsHandler struct {
	logger           *zap.Logger
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler 创建分析处理器
func NewAnalyticsHandler(logger *zap.Logger, analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:           logger,
		analyticsService: analyticsService,
	}
}

// Portfolio 组合绩效指标，支持与交易列表一致的筛选参数
// GET /api/analytics/portfolio
func (h *AnalyticsHandler) Portfolio(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	analytics, err := h.analyticsService.Portfolio(ctx, userID, parseFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics)
}

// ForModel 单个交易模型的绩效
// GET /api/analytics/models/:id
func (h *AnalyticsHandler) ForModel(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	analytics, err := h.analyticsService.ForModel(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics)
}

// Dashboard 仪表盘数据
// GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	dashboard, err := h.analyticsService.GetDashboard(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}

// Calendar 月度盈亏日历，缺省为当前月份
// GET /api/analytics/calendar?year=2025&month=6
func (h *AnalyticsHandler) Calendar(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	now := time.Now()
	year := now.Year()
	month := now.Month()
	if v := c.QueryParam("year"); v != "" {
		year = cast.ToInt(v)
	}
	if v := c.QueryParam("month"); v != "" {
		m := cast.ToInt(v)
		if m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	calendar, err := h.analyticsService.GetCalendar(ctx, userID, year, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"year":     year,
		"month":    int(month),
		"calendar": calendar,
	})
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(g *echo.Group) {
	analytics := g.Group("/analytics")
	analytics.GET("/portfolio", h.Portfolio)
	analytics.GET("/models/:id", h.ForModel)
	analytics.GET("/dashboard", h.Dashboard)
	analytics.GET("/calendar", h.Calendar)
}
