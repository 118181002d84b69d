package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const csvHeader = "Date (Req: YYYY-MM-DD),Instrument (Req),Direction (Req: Long or Short)," +
	"Point Value (Opt),Initial Stop Loss (Opt),Terminus Target (Opt),Trading Model (Opt)," +
	"How Closed (Opt),Trade Notes (Opt)," +
	"Entry Time 1 (Req: HH:MM),Entry Contracts 1 (Req),Entry Price 1 (Req)," +
	"Exit Time 1 (Opt: HH:MM),Exit Contracts 1 (Opt),Exit Price 1 (Opt)," +
	"Entry Time 2 (Opt: HH:MM),Entry Contracts 2 (Opt),Entry Price 2 (Opt)," +
	"Exit Time 2 (Opt: HH:MM),Exit Contracts 2 (Opt),Exit Price 2 (Opt)," +
	"Entry Time 3 (Opt: HH:MM),Entry Contracts 3 (Opt),Entry Price 3 (Opt)," +
	"Exit Time 3 (Opt: HH:MM),Exit Contracts 3 (Opt),Exit Price 3 (Opt)," +
	"Entry Time 4 (Opt: HH:MM),Entry Contracts 4 (Opt),Entry Price 4 (Opt)," +
	"Exit Time 4 (Opt: HH:MM),Exit Contracts 4 (Opt),Exit Price 4 (Opt)," +
	"Entry Time 5 (Opt: HH:MM),Entry Contracts 5 (Opt),Entry Price 5 (Opt)," +
	"Exit Time 5 (Opt: HH:MM),Exit Contracts 5 (Opt),Exit Price 5 (Opt)"

func csvBody(rows ...string) *bytes.Buffer {
	return bytes.NewBufferString(csvHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func pad(fields ...string) string {
	// 补齐到表头的 39 列
	out := make([]string, 39)
	copy(out, fields)
	return strings.Join(out, ",")
}

func newImportTestEnv(t *testing.T) *ImportService {
	t.Helper()
	svc, _, _ := newTradeTestEnv(t)
	return NewImportService(zap.NewNop(), svc)
}

func TestImportValidRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	importSvc := newImportTestEnv(t)

	body := csvBody(pad("2025-06-02", "NQ", "Long", "", "", "", "", "", "",
		"09:30", "1", "15000", "10:00", "1", "15010"))
	result, err := importSvc.Import(ctx, "01USER", body)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestImportBadRowsReportedPerRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	importSvc := newImportTestEnv(t)

	body := csvBody(
		pad("2025-06-02", "NQ", "Long", "", "", "", "", "", "", "09:30", "1", "15000"), // 合法
		pad("2025-06-03", "NQ", "Sideways", "", "", "", "", "", "", "09:30", "1", "15000"), // 方向非法
		pad("2025-06-04", "NQ", "Long"), // 无进场
		pad("2025-06-05", "NQ", "Long", "", "", "", "", "", "", "09:30", "abc", "15000"), // 手数非法
	)
	result, err := importSvc.Import(ctx, "01USER", body)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	// 行号从 2 起算（首行为表头）
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, 5, result.Errors[2].Row)
}

func TestImportPartialTripletRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	importSvc := newImportTestEnv(t)

	// 出场三元组只填了时间
	body := csvBody(pad("2025-06-02", "NQ", "Long", "", "", "", "", "", "",
		"09:30", "1", "15000", "10:00", "", ""))
	result, err := importSvc.Import(ctx, "01USER", body)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestExportRoundTripFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	importSvc := newImportTestEnv(t)

	body := csvBody(pad("2025-06-02", "NQ", "Long", "", "14990", "", "", "TP Hit", "note",
		"09:30", "1", "15000", "10:00", "1", "15010"))
	_, err := importSvc.Import(ctx, "01USER", body)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, importSvc.Export(ctx, "01USER", &out))

	exported := out.String()
	assert.Contains(t, exported, "NQ")
	assert.Contains(t, exported, "Long")
	assert.Contains(t, exported, "200")
	assert.Contains(t, exported, "Closed")
	assert.Contains(t, exported, "TP Hit")
}
