package db_test

import (
	"context"
	"testing"
	"time"

	"smart_ems/internal/models"
	"smart_ems/internal/repository"
	"smart_ems/internal/repository/db"
)

func TestInitDB_InMemoryEventLog(t *testing.T) {
	sqlDB, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewRepository(sqlDB).EventRepo
	ctx := context.Background()
	t0 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	events := []models.AlertEvent{
		{OccurredAt: t0, Type: "raised", AlertID: "a1", DeviceID: "BAT_001", Description: "Battery SoC Low",
			Metadata: map[string]any{"rule": "soc_low", "priority": 4}},
		{OccurredAt: t0.Add(time.Minute), Type: models.EventAcknowledged, AlertID: "a1", DeviceID: "BAT_001", Description: "Alert acknowledged"},
		{OccurredAt: t0.Add(2 * time.Minute), Type: models.EventRaised, AlertID: "a2", DeviceID: "GRID_001", Description: "Grid Voltage Deviation"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// applying the schema twice is harmless
	again, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	_ = again.Close()

	all, err := repo.List(ctx, time.Time{}, time.Time{}, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Type != models.EventRaised || all[0].EventID == "" || !all[0].OccurredAt.Equal(t0) {
		t.Fatalf("unexpected first event: %+v", all[0])
	}
	meta, ok := all[0].Metadata.(map[string]any)
	if !ok || meta["rule"] != "soc_low" {
		t.Fatalf("metadata not round-tripped: %#v", all[0].Metadata)
	}

	raised, err := repo.List(ctx, time.Time{}, time.Time{}, models.EventRaised, "")
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	if len(raised) != 2 || raised[1].AlertID != "a2" {
		t.Fatalf("unexpected RAISED events: %+v", raised)
	}

	window, err := repo.List(ctx, t0.Add(30*time.Second), t0.Add(90*time.Second), "", "a1")
	if err != nil {
		t.Fatalf("List by window: %v", err)
	}
	if len(window) != 1 || window[0].Type != models.EventAcknowledged {
		t.Fatalf("unexpected window events: %+v", window)
	}
}
