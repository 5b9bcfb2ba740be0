package brain

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// Use a file-backed database in a temp dir rather than :memory:;
	// the shared-cache in-memory database is process-global, so parallel
	// tests would see each other's rows.
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cometa.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenAndMigrate(t *testing.T) {
	s := newTestStore(t)

	v, err := schemaVersion(context.Background(), s.db)
	if err != nil {
		t.Fatalf("schemaVersion: %v", err)
	}
	want := migrations[len(migrations)-1].version
	if v != want {
		t.Errorf("schema version = %d, want %d", v, want)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cometa.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s1.TouchSession(ctx, "sess-1", "/w", "", ""); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	sess, err := s2.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess == nil || sess.CWD != "/w" {
		t.Errorf("session not persisted across reopen: %+v", sess)
	}
}

func TestCloseTwice(t *testing.T) {
	s := newTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}

func TestCheckpointWAL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CheckpointWAL(ctx, "TRUNCATE"); err != nil {
		t.Fatalf("CheckpointWAL: %v", err)
	}
	if err := s.CheckpointWAL(ctx, "SNEAKY"); err == nil {
		t.Fatal("expected error for invalid checkpoint mode")
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.TouchSession(ctx, "s1", "/w", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMemory(ctx, &Memory{SessionID: "s1", Content: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTask(ctx, &Task{Title: "do the thing"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordToolEvent(ctx, &ToolEvent{SessionID: "s1", HookEvent: "PreToolUse", ToolName: "Bash"}); err != nil {
		t.Fatal(err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Sessions != 1 || st.Memories != 1 || st.Tasks != 1 || st.OpenTasks != 1 || st.ToolEvents != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}
