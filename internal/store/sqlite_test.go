package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"groww-sentinel/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr(v float64) *float64 { return &v }

func TestLoadEmptyStore(t *testing.T) {
	s := newTestStore(t)

	alerts, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected empty collection, got %d alerts", len(alerts))
	}
}

func TestSaveAllRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	triggeredAt := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	alerts := []models.Alert{
		{
			ID:        uuid.NewString(),
			Symbol:    "RELIANCE",
			Kind:      models.AlertPriceAbove,
			Threshold: 2500,
			Status:    models.AlertActive,
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			Note:      "watch breakout",
		},
		{
			ID:          uuid.NewString(),
			Symbol:      "TCS",
			Kind:        models.AlertPercentDecrease,
			Threshold:   5,
			BasePrice:   ptr(3400.50),
			LastPrice:   ptr(3250.25),
			Status:      models.AlertTriggered,
			CreatedAt:   time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC),
			TriggeredAt: &triggeredAt,
		},
	}

	if err := s.SaveAll(ctx, alerts); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != len(alerts) {
		t.Fatalf("loaded %d alerts, want %d", len(loaded), len(alerts))
	}

	for i, want := range alerts {
		got := loaded[i]
		if got.ID != want.ID || got.Symbol != want.Symbol || got.Kind != want.Kind {
			t.Errorf("alert %d identity mismatch: got %+v", i, got)
		}
		if got.Threshold != want.Threshold || got.Status != want.Status || got.Note != want.Note {
			t.Errorf("alert %d field mismatch: got %+v", i, got)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("alert %d created_at = %v, want %v", i, got.CreatedAt, want.CreatedAt)
		}
		if (got.BasePrice == nil) != (want.BasePrice == nil) {
			t.Errorf("alert %d base_price presence mismatch", i)
		} else if got.BasePrice != nil && *got.BasePrice != *want.BasePrice {
			t.Errorf("alert %d base_price = %f, want %f", i, *got.BasePrice, *want.BasePrice)
		}
		if (got.TriggeredAt == nil) != (want.TriggeredAt == nil) {
			t.Errorf("alert %d triggered_at presence mismatch", i)
		} else if got.TriggeredAt != nil && !got.TriggeredAt.Equal(*want.TriggeredAt) {
			t.Errorf("alert %d triggered_at = %v, want %v", i, got.TriggeredAt, want.TriggeredAt)
		}
	}
}

func TestSaveAllReplacesPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []models.Alert{
		{ID: "a1", Symbol: "INFY", Kind: models.AlertPriceBelow, Threshold: 1400,
			Status: models.AlertActive, CreatedAt: time.Now().UTC()},
		{ID: "a2", Symbol: "WIPRO", Kind: models.AlertPriceAbove, Threshold: 500,
			Status: models.AlertActive, CreatedAt: time.Now().UTC()},
	}
	if err := s.SaveAll(ctx, first); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	second := []models.Alert{
		{ID: "a3", Symbol: "HDFC", Kind: models.AlertVolumeAbove, Threshold: 1e6,
			Status: models.AlertActive, CreatedAt: time.Now().UTC()},
	}
	if err := s.SaveAll(ctx, second); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "a3" {
		t.Errorf("expected snapshot to be replaced, got %+v", loaded)
	}
}

func TestSaveAllEmptyClearsStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAll(ctx, []models.Alert{
		{ID: "a1", Symbol: "INFY", Kind: models.AlertPriceAbove, Threshold: 1,
			Status: models.AlertActive, CreatedAt: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	if err := s.SaveAll(ctx, nil); err != nil {
		t.Fatalf("SaveAll(nil): %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty store, got %d alerts", len(loaded))
	}
}
