package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJournalUpsertPerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewJournalService(zap.NewNop(), newTestDB(t))

	rating := 4
	first, err := svc.Upsert(ctx, "01USER", DailyJournalRequest{
		JournalDate:         "2025-06-02",
		KeyEventsToday:      "CPI release",
		MentalFeelingRating: &rating,
	})
	require.NoError(t, err)

	// 同一天再次写入是覆盖而不是新增
	second, err := svc.Upsert(ctx, "01USER", DailyJournalRequest{
		JournalDate:    "2025-06-02",
		KeyEventsToday: "CPI release, FOMC minutes",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "CPI release, FOMC minutes", second.KeyEventsToday)
	assert.Nil(t, second.MentalFeelingRating)

	journals, err := svc.List(ctx, "01USER", nil, nil)
	require.NoError(t, err)
	assert.Len(t, journals, 1)
}

func TestJournalGetByDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewJournalService(zap.NewNop(), newTestDB(t))

	_, err := svc.Upsert(ctx, "01USER", DailyJournalRequest{JournalDate: "2025-06-02"})
	require.NoError(t, err)

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	journal, err := svc.Get(ctx, "01USER", date)
	require.NoError(t, err)
	assert.Equal(t, "01USER", journal.UserID)

	_, err = svc.Get(ctx, "02OTHER", date)
	assert.ErrorIs(t, err, xe.ErrJournalNotFound)
}

func TestJournalUnknownScenarioRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewJournalService(zap.NewNop(), newTestDB(t))

	missing := "01MISSING"
	_, err := svc.Upsert(ctx, "01USER", DailyJournalRequest{
		JournalDate:   "2025-06-02",
		P12ScenarioID: &missing,
	})
	assert.ErrorIs(t, err, xe.ErrScenarioNotFound)
}

func TestP12ScenarioLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewJournalService(zap.NewNop(), newTestDB(t))

	created, err := svc.CreateScenario(ctx, P12ScenarioRequest{
		ScenarioNumber:       "1",
		ScenarioName:         "Clean Trend Up",
		ShortDescription:     "Sustained directional move above mid",
		DetailedDescription:  "Price holds above the P12 mid for the entire window.",
		HodLodImplication:    "LOD likely set before the window opens",
		AlertCriteria:        "Price above mid at open",
		ConfirmationCriteria: "Two closes above mid",
		EntryStrategy:        "Buy pullbacks to mid",
	})
	require.NoError(t, err)

	// 编号重复拒绝
	_, err = svc.CreateScenario(ctx, P12ScenarioRequest{
		ScenarioNumber:       "1",
		ScenarioName:         "Duplicate",
		ShortDescription:     "x",
		DetailedDescription:  "x",
		HodLodImplication:    "x",
		AlertCriteria:        "x",
		ConfirmationCriteria: "x",
		EntryStrategy:        "x",
	})
	assert.ErrorIs(t, err, xe.ErrInvalidParams)

	scenarios, err := svc.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Len(t, scenarios, 1)

	inactive := false
	_, err = svc.UpdateScenario(ctx, created.ID, P12ScenarioRequest{
		ScenarioNumber:       "1",
		ScenarioName:         "Clean Trend Up",
		ShortDescription:     "Sustained directional move above mid",
		DetailedDescription:  "Price holds above the P12 mid for the entire window.",
		HodLodImplication:    "LOD likely set before the window opens",
		AlertCriteria:        "Price above mid at open",
		ConfirmationCriteria: "Two closes above mid",
		EntryStrategy:        "Buy pullbacks to mid",
		IsActive:             &inactive,
	})
	require.NoError(t, err)

	scenarios, err = svc.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}
