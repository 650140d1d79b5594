package audit

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
	"github.com/nerrad567/gray-logic-cec/migrations"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestSQLiteRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t).DB)

	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{Action: ActionCommand, Target: "10:36", Source: SourceAPI, Success: true, CreatedAt: base},
		{Action: ActionCommand, Target: "14:44:41", Source: SourceMQTT, Success: false, CreatedAt: base.Add(time.Second)},
		{Action: ActionSequence, Target: "standby()", Source: SourceAPI, Success: true, CreatedAt: base.Add(2 * time.Second),
			Details: map[string]any{"steps": 1}},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(e.ID) != len("aud-")+8 {
			t.Errorf("generated ID = %q", e.ID)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Entries) != 3 {
		t.Fatalf("List() total=%d len=%d, want 3", all.Total, len(all.Entries))
	}
	if all.Entries[0].Target != "standby()" {
		t.Errorf("most recent entry = %q, want standby()", all.Entries[0].Target)
	}
	if all.Entries[0].Details["steps"] != float64(1) {
		t.Errorf("details = %v", all.Entries[0].Details)
	}
	if all.Limit != defaultLimit {
		t.Errorf("Limit = %d, want %d", all.Limit, defaultLimit)
	}

	failed := false
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by action", Filter{Action: ActionCommand}, 2},
		{"by source", Filter{Source: SourceMQTT}, 1},
		{"failures only", Filter{Success: &failed}, 1},
		{"paged", Filter{Limit: 1, Offset: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(res.Entries) != tt.want {
				t.Errorf("List() returned %d entries, want %d", len(res.Entries), tt.want)
			}
		})
	}
}

func TestSQLiteRepository_ListEmpty(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t).DB)

	res, err := repo.List(context.Background(), Filter{Limit: 1000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Entries == nil || len(res.Entries) != 0 {
		t.Errorf("Entries = %v, want empty non-nil slice", res.Entries)
	}
	if res.Limit != maxLimit {
		t.Errorf("Limit = %d, want clamp to %d", res.Limit, maxLimit)
	}
}

// ─── Mock Dependencies ──────────────────────────────────────────────

type memoryRepo struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memoryRepo) Create(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryRepo) List(context.Context, Filter) (*ListResult, error) {
	return nil, errors.New("not implemented")
}

type captureLogger struct {
	mu    sync.Mutex
	warns []string
}

func (c *captureLogger) Warn(msg string, _ ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, msg)
}

func TestRecorder_RecordCommand(t *testing.T) {
	repo := &memoryRepo{}
	rec := NewRecorder(repo)

	ctx := WithSource(context.Background(), SourceMQTT)
	rec.RecordCommand(ctx, "14:44:41", true)
	rec.RecordCommand(context.Background(), "nonsense", false)

	if len(repo.entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(repo.entries))
	}
	first := repo.entries[0]
	if first.Action != ActionCommand || first.Source != SourceMQTT || !first.Success {
		t.Errorf("first entry = %+v", first)
	}
	if first.Details["destination"] != "4" || first.Details["opcode"] != 0x44 {
		t.Errorf("first entry details = %v", first.Details)
	}
	second := repo.entries[1]
	if second.Source != SourceSystem || second.Details != nil {
		t.Errorf("unparseable frame entry = %+v", second)
	}
}

func TestRecorder_RecordExecution(t *testing.T) {
	repo := &memoryRepo{}
	rec := NewRecorder(repo)

	rec.RecordExecution(WithSource(context.Background(), SourceAPI), sequence.Execution{
		ID:       "seq-12345678",
		Sequence: "standby()|bogus()",
		Status:   sequence.StatusRejected,
		Error:    "sequence: unknown action: \"bogus\"",
		Duration: 3 * time.Millisecond,
	})

	if len(repo.entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionSequence || e.Success || e.Source != SourceAPI {
		t.Errorf("entry = %+v", e)
	}
	if e.Details["execution_id"] != "seq-12345678" || e.Details["error"] == nil {
		t.Errorf("details = %v", e.Details)
	}
}

func TestRecorder_WriteFailureLogged(t *testing.T) {
	repo := &memoryRepo{err: errors.New("disk full")}
	logger := &captureLogger{}
	rec := NewRecorder(repo)
	rec.SetLogger(logger)

	rec.RecordCommand(context.Background(), "10:36", true)

	if len(logger.warns) != 1 {
		t.Errorf("expected one warning, got %v", logger.warns)
	}
}

func TestRecorder_CancelledContextStillWrites(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t).DB)
	rec := NewRecorder(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.RecordCommand(ctx, "10:36", true)

	res, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 1 {
		t.Errorf("Total = %d, want 1", res.Total)
	}
}

func TestSightingStore(t *testing.T) {
	ctx := context.Background()
	store := NewSightingStore(openTestDB(t).DB)

	clock := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.ObserveScan(ctx, map[cec.LogicalAddress]cec.DeviceRecord{
		0: {LogicalAddress: 0, OSDName: "TV", CECVersion: "1.4", VendorID: 0x0000F0},
		4: {LogicalAddress: 4, OSDName: "Player", PhysicalAddress: 0x1000},
	}, time.Second)

	clock = clock.Add(time.Hour)
	store.ObserveScan(ctx, map[cec.LogicalAddress]cec.DeviceRecord{
		0: {LogicalAddress: 0, OSDName: "Living Room TV", CECVersion: "2.0", VendorID: 0x0000F0},
	}, time.Second)

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d sightings, want 2", len(got))
	}

	tv := got[0]
	if tv.OSDName != "Living Room TV" || tv.CECVersion != "2.0" {
		t.Errorf("TV sighting not updated: %+v", tv)
	}
	if !tv.LastSeen.After(tv.FirstSeen) {
		t.Errorf("TV LastSeen %v should be after FirstSeen %v", tv.LastSeen, tv.FirstSeen)
	}
	player := got[1]
	if player.PhysicalAddress != 0x1000 || !player.LastSeen.Equal(player.FirstSeen) {
		t.Errorf("player sighting = %+v", player)
	}
}

func TestSourceFrom(t *testing.T) {
	if SourceFrom(context.Background()) != SourceSystem {
		t.Error("untagged context should report system")
	}
	if SourceFrom(WithSource(context.Background(), SourceAPI)) != SourceAPI {
		t.Error("tagged context should report api")
	}
}
