package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	storeMocks "github.com/rgclark/putterbase/internal/store/mocks"
	domain "github.com/rgclark/putterbase/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngest_NormalizesAndStores(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ing := NewIngester(ms, quietLogger())

	observedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	raws := []RawObservation{
		{
			ListingID:  "lst-1",
			Title:      "Scotty Cameron Newport 2 34in used",
			PriceCents: 40000,
			Condition:  "Pre-Owned",
			ObservedAt: observedAt,
		},
		{
			ListingID:  "lst-2",
			Title:      "Scotty Cameron Newport 2 Circle T Tour Use Only",
			PriceCents: 250000,
			Condition:  "Like New",
			ObservedAt: observedAt,
		},
	}

	var stored []domain.ListingObservation
	ms.EXPECT().InsertObservations(mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).([]domain.ListingObservation)
		}).
		Return(2, nil)

	rep, err := ing.Ingest(context.Background(), raws)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Accepted)
	assert.Equal(t, 0, rep.Skipped)
	assert.NoError(t, rep.FirstError)

	require.Len(t, stored, 2)

	base := stored[0]
	assert.Equal(t, "newport 2", base.ModelKey)
	assert.Empty(t, base.VariantKey)
	assert.Equal(t, domain.ConditionUsed, base.ConditionBand)
	assert.Equal(t, "putter", base.Category)
	assert.Equal(t, "retail", base.RarityTier)
	assert.Equal(t, observedAt, base.ObservedAt)

	// The Circle T listing shares the base model key but carries a
	// variant key.
	ct := stored[1]
	assert.Equal(t, "newport 2", ct.ModelKey)
	assert.Equal(t, "newport 2|circle_t|tour_only", ct.VariantKey)
	assert.Equal(t, domain.ConditionLikeNew, ct.ConditionBand)
}

func TestIngest_SkipAccounting(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ing := NewIngester(ms, quietLogger())

	raws := []RawObservation{
		{ListingID: "", Title: "Newport 2", PriceCents: 40000},
		{ListingID: "lst-2", Title: "Newport 2", PriceCents: 0},
		{ListingID: "lst-3", Title: "   ", PriceCents: 40000},
		{ListingID: "lst-4", Title: "Anser 2", PriceCents: 35000},
	}

	ms.EXPECT().InsertObservations(mock.Anything, mock.MatchedBy(
		func(obs []domain.ListingObservation) bool { return len(obs) == 1 },
	)).Return(1, nil)

	rep, err := ing.Ingest(context.Background(), raws)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Accepted)
	assert.Equal(t, 3, rep.Skipped)
	require.Error(t, rep.FirstError)
	assert.Contains(t, rep.FirstError.Error(), "missing_listing_id")
}

func TestIngest_DuplicatesCountAsSkipped(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ing := NewIngester(ms, quietLogger())

	raws := []RawObservation{
		{ListingID: "lst-1", Title: "Newport 2", PriceCents: 40000},
		{ListingID: "lst-1", Title: "Newport 2", PriceCents: 40000},
	}

	// The store reports only one row actually inserted.
	ms.EXPECT().InsertObservations(mock.Anything, mock.Anything).Return(1, nil)

	rep, err := ing.Ingest(context.Background(), raws)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Accepted)
	assert.Equal(t, 1, rep.Skipped)
}

func TestIngest_StoreErrorFailsBatch(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ing := NewIngester(ms, quietLogger())

	boom := errors.New("connection refused")
	ms.EXPECT().InsertObservations(mock.Anything, mock.Anything).Return(0, boom)

	_, err := ing.Ingest(context.Background(), []RawObservation{
		{ListingID: "lst-1", Title: "Newport 2", PriceCents: 40000},
	})
	assert.ErrorIs(t, err, boom)
}

func TestIngest_ZeroObservedAtDefaultsToNow(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ing := NewIngester(ms, quietLogger())

	var stored []domain.ListingObservation
	ms.EXPECT().InsertObservations(mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).([]domain.ListingObservation)
		}).
		Return(1, nil)

	before := time.Now()
	_, err := ing.Ingest(context.Background(), []RawObservation{
		{ListingID: "lst-1", Title: "Newport 2", PriceCents: 40000},
	})
	require.NoError(t, err)

	require.Len(t, stored, 1)
	assert.False(t, stored[0].ObservedAt.Before(before))
}
