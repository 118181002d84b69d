package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// ImportService 交易记录 CSV 导入导出
type ImportService struct {
	logger       *zap.Logger
	tradeService *TradeService
}

func NewImportService(logger *zap.Logger, tradeService *TradeService) *ImportService {
	return &ImportService{
		logger:       logger,
		tradeService: tradeService,
	}
}

// csvTradeRow 导入模板的一行，最多支持 5 笔分批进出场
type csvTradeRow struct {
	Date       string `csv:"Date (Req: YYYY-MM-DD)"`
	Instrument string `csv:"Instrument (Req)"`
	Direction  string `csv:"Direction (Req: Long or Short)"`
	PointValue string `csv:"Point Value (Opt)"`
	StopLoss   string `csv:"Initial Stop Loss (Opt)"`
	Target     string `csv:"Terminus Target (Opt)"`
	Model      string `csv:"Trading Model (Opt)"`
	HowClosed  string `csv:"How Closed (Opt)"`
	Notes      string `csv:"Trade Notes (Opt)"`

	EntryTime1      string `csv:"Entry Time 1 (Req: HH:MM)"`
	EntryContracts1 string `csv:"Entry Contracts 1 (Req)"`
	EntryPrice1     string `csv:"Entry Price 1 (Req)"`
	ExitTime1       string `csv:"Exit Time 1 (Opt: HH:MM)"`
	ExitContracts1  string `csv:"Exit Contracts 1 (Opt)"`
	ExitPrice1      string `csv:"Exit Price 1 (Opt)"`

	EntryTime2      string `csv:"Entry Time 2 (Opt: HH:MM)"`
	EntryContracts2 string `csv:"Entry Contracts 2 (Opt)"`
	EntryPrice2     string `csv:"Entry Price 2 (Opt)"`
	ExitTime2       string `csv:"Exit Time 2 (Opt: HH:MM)"`
	ExitContracts2  string `csv:"Exit Contracts 2 (Opt)"`
	ExitPrice2      string `csv:"Exit Price 2 (Opt)"`

	EntryTime3      string `csv:"Entry Time 3 (Opt: HH:MM)"`
	EntryContracts3 string `csv:"Entry Contracts 3 (Opt)"`
	EntryPrice3     string `csv:"Entry Price 3 (Opt)"`
	ExitTime3       string `csv:"Exit Time 3 (Opt: HH:MM)"`
	ExitContracts3  string `csv:"Exit Contracts 3 (Opt)"`
	ExitPrice3      string `csv:"Exit Price 3 (Opt)"`

	EntryTime4      string `csv:"Entry Time 4 (Opt: HH:MM)"`
	EntryContracts4 string `csv:"Entry Contracts 4 (Opt)"`
	EntryPrice4     string `csv:"Entry Price 4 (Opt)"`
	ExitTime4       string `csv:"Exit Time 4 (Opt: HH:MM)"`
	ExitContracts4  string `csv:"Exit Contracts 4 (Opt)"`
	ExitPrice4      string `csv:"Exit Price 4 (Opt)"`

	EntryTime5      string `csv:"Entry Time 5 (Opt: HH:MM)"`
	EntryContracts5 string `csv:"Entry Contracts 5 (Opt)"`
	EntryPrice5     string `csv:"Entry Price 5 (Opt)"`
	ExitTime5       string `csv:"Exit Time 5 (Opt: HH:MM)"`
	ExitContracts5  string `csv:"Exit Contracts 5 (Opt)"`
	ExitPrice5      string `csv:"Exit Price 5 (Opt)"`
}

func (row *csvTradeRow) entryTriplets() [][3]string {
	return [][3]string{
		{row.EntryTime1, row.EntryContracts1, row.EntryPrice1},
		{row.EntryTime2, row.EntryContracts2, row.EntryPrice2},
		{row.EntryTime3, row.EntryContracts3, row.EntryPrice3},
		{row.EntryTime4, row.EntryContracts4, row.EntryPrice4},
		{row.EntryTime5, row.EntryContracts5, row.EntryPrice5},
	}
}

func (row *csvTradeRow) exitTriplets() [][3]string {
	return [][3]string{
		{row.ExitTime1, row.ExitContracts1, row.ExitPrice1},
		{row.ExitTime2, row.ExitContracts2, row.ExitPrice2},
		{row.ExitTime3, row.ExitContracts3, row.ExitPrice3},
		{row.ExitTime4, row.ExitContracts4, row.ExitPrice4},
		{row.ExitTime5, row.ExitContracts5, row.ExitPrice5},
	}
}

// RowError 单行导入错误，行号从数据首行起为 2（第 1 行是表头）
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult 导入结果汇总
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// parseFillTriplets 解析分批进/出场三元组，三项要么全空要么全填
func parseFillTriplets(triplets [][3]string, label string) ([]FillRequest, error) {
	var fills []FillRequest
	for i, t := range triplets {
		timeStr := strings.TrimSpace(t[0])
		contractsStr := strings.TrimSpace(t[1])
		priceStr := strings.TrimSpace(t[2])
		if timeStr == "" && contractsStr == "" && priceStr == "" {
			continue
		}
		if timeStr == "" || contractsStr == "" || priceStr == "" {
			return nil, fmt.Errorf("%s %d 的时间/手数/价格必须同时填写", label, i+1)
		}
		contracts, err := strconv.Atoi(contractsStr)
		if err != nil || contracts <= 0 {
			return nil, fmt.Errorf("%s %d 的手数无效: %s", label, i+1, contractsStr)
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("%s %d 的价格无效: %s", label, i+1, priceStr)
		}
		fills = append(fills, FillRequest{Time: timeStr, Contracts: contracts, Price: price})
	}
	return fills, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Import 逐行导入 CSV，坏行记录错误并跳过，好行照常入库
func (s *ImportService) Import(ctx context.Context, userID string, reader io.Reader) (*ImportResult, error) {
	var rows []*csvTradeRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []RowError{}}
	for i, row := range rows {
		rowNum := i + 2
		req, err := s.rowToRequest(ctx, userID, row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if _, err := s.tradeService.Create(ctx, userID, *req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	s.logger.Info("csv import finished",
		zap.String("user_id", userID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *ImportService) rowToRequest(ctx context.Context, userID string, row *csvTradeRow) (*TradeRequest, error) {
	date := strings.TrimSpace(row.Date)
	instrument := strings.TrimSpace(row.Instrument)
	direction := strings.TrimSpace(row.Direction)
	if date == "" || instrument == "" || direction == "" {
		return nil, fmt.Errorf("日期、品种和方向为必填项")
	}
	if direction != models.DirectionLong && direction != models.DirectionShort {
		return nil, fmt.Errorf("方向无效: %s", direction)
	}

	entries, err := parseFillTriplets(row.entryTriplets(), "进场")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("至少需要一笔进场记录")
	}
	exits, err := parseFillTriplets(row.exitTriplets(), "出场")
	if err != nil {
		return nil, err
	}

	pointValue, err := parseOptionalFloat(row.PointValue)
	if err != nil {
		return nil, fmt.Errorf("点值无效: %s", row.PointValue)
	}
	stopLoss, err := parseOptionalFloat(row.StopLoss)
	if err != nil {
		return nil, fmt.Errorf("止损价无效: %s", row.StopLoss)
	}
	target, err := parseOptionalFloat(row.Target)
	if err != nil {
		return nil, fmt.Errorf("目标价无效: %s", row.Target)
	}

	var modelID *string
	if name := strings.TrimSpace(row.Model); name != "" {
		model, err := s.tradeService.modelRepo.FindVisibleByName(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("交易模型不存在: %s", name)
		}
		modelID = &model.ID
	}

	return &TradeRequest{
		Instrument:      instrument,
		TradeDate:       date,
		Direction:       direction,
		Entries:         entries,
		Exits:           exits,
		PointValue:      pointValue,
		InitialStopLoss: stopLoss,
		TerminusTarget:  target,
		HowClosed:       strings.TrimSpace(row.HowClosed),
		TradeNotes:      row.Notes,
		TradingModelID:  modelID,
	}, nil
}

// csvExportRow 导出行，均价与盈亏为计算列
type csvExportRow struct {
	Date        string  `csv:"Date"`
	Instrument  string  `csv:"Instrument"`
	Direction   string  `csv:"Direction"`
	Contracts   int     `csv:"Contracts"`
	AvgEntry    string  `csv:"Avg Entry Price"`
	AvgExit     string  `csv:"Avg Exit Price"`
	Pnl         float64 `csv:"PnL"`
	PnlInR      string  `csv:"PnL (R)"`
	Status      string  `csv:"Status"`
	HowClosed   string  `csv:"How Closed"`
	TimeInTrade string  `csv:"Time In Trade"`
	Model       string  `csv:"Trading Model"`
	Notes       string  `csv:"Notes"`
}

// Export 把用户交易导出为 CSV 写入 writer
func (s *ImportService) Export(ctx context.Context, userID string, writer io.Writer) error {
	trades, err := s.tradeService.List(ctx, userID, repo.TradeFilter{})
	if err != nil {
		return err
	}

	rows := make([]*csvExportRow, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		row := &csvExportRow{
			Date:        t.TradeDate.Format("2006-01-02"),
			Instrument:  t.Symbol(),
			Direction:   t.Direction,
			Contracts:   t.TotalEntered(),
			Pnl:         t.GrossPnl(),
			HowClosed:   t.HowClosed,
			TimeInTrade: t.TimeInTradeDisplay(),
			Notes:       t.TradeNotes,
		}
		if avg, ok := t.AverageEntryPrice(); ok {
			row.AvgEntry = strconv.FormatFloat(avg, 'f', -1, 64)
		}
		if avg, ok := t.AverageExitPrice(); ok {
			row.AvgExit = strconv.FormatFloat(avg, 'f', -1, 64)
		}
		if r := t.PnlInR(); r != nil {
			row.PnlInR = strconv.FormatFloat(*r, 'f', 2, 64)
		}
		if t.IsOpen() {
			row.Status = "Open"
		} else {
			row.Status = "Closed"
		}
		if t.TradingModel != nil {
			row.Model = t.TradingModel.Name
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, writer)
}
