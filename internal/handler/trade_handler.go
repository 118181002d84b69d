package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TradeHandler 交易记录处理器
type TradeHandler struct {
	logger        *zap.Logger
	tradeService  *service.TradeService
	importService *service.ImportService
}

// NewTradeHandler 创建交易处理器
func NewTradeHandler(
	logger *zap.Logger,
	tradeService *service.TradeService,
	importService *service.ImportService,
) *TradeHandler {
	return &TradeHandler{
		logger:        logger,
		tradeService:  tradeService,
		importService: importService,
	}
}

// parseFilter 从查询参数组装筛选条件
func parseFilter(c echo.Context) repo.TradeFilter {
	filter := repo.TradeFilter{
		Direction:    c.QueryParam("direction"),
		InstrumentID: c.QueryParam("instrument_id"),
		ModelID:      c.QueryParam("model_id"),
		PnlBucket:    c.QueryParam("pnl_bucket"),
		HowClosed:    c.QueryParam("how_closed"),
	}
	if v := c.QueryParam("start_date"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.QueryParam("end_date"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			filter.EndDate = &t
		}
	}
	if v := c.QueryParam("min_pnl"); v != "" {
		f := cast.ToFloat64(v)
		filter.MinPnl = &f
	}
	if v := c.QueryParam("max_pnl"); v != "" {
		f := cast.ToFloat64(v)
		filter.MaxPnl = &f
	}
	if v := c.QueryParam("min_contracts"); v != "" {
		n := cast.ToInt(v)
		filter.MinContracts = &n
	}
	if v := c.QueryParam("max_contracts"); v != "" {
		n := cast.ToInt(v)
		filter.MaxContracts = &n
	}
	if v := c.QueryParam("is_dca"); v != "" {
		b := cast.ToBool(v)
		filter.IsDca = &b
	}
	if v := c.QueryParam("rating_floor"); v != "" {
		n := cast.ToInt(v)
		filter.RatingFloor = &n
	}
	if v := c.QueryParams()["tag_id"]; len(v) > 0 {
		filter.TagIDs = v
	}
	return filter
}

// List 交易列表
// GET /api/trades
func (h *TradeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	trades, err := h.tradeService.List(ctx, userID, parseFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

// Get 单条交易
// GET /api/trades/:id
func (h *TradeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	trade, err := h.tradeService.Get(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// Create 创建交易
// POST /api/trades
func (h *TradeHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.Create(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// Update 更新交易
// PUT /api/trades/:id
func (h *TradeHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	var req service.TradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.Update(ctx, userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// Delete 删除交易
// DELETE /api/trades/:id
func (h *TradeHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	if err := h.tradeService.Delete(ctx, userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "delete success",
	})
}

// Import CSV 批量导入
// POST /api/trades/import
func (h *TradeHandler) Import(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "missing file",
		})
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := h.importService.Import(ctx, userID, src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// Export CSV 导出
// GET /api/trades/export
func (h *TradeHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="trades.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return h.importService.Export(ctx, userID, c.Response().Writer)
}

// RegisterRoutes 注册路由
func (h *TradeHandler) RegisterRoutes(g *echo.Group) {
	trades := g.Group("/trades")
	trades.GET("", h.List)
	trades.POST("", h.Create)
	trades.GET("/export", h.Export)
	trades.POST("/import", h.Import)
	trades.GET("/:id", h.Get)
	trades.PUT("/:id", h.Update)
	trades.DELETE("/:id", h.Delete)
}
