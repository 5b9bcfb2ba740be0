package brain

import (
	"context"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMetadata(ctx, "embeddings.provider", "ollama"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	got, err := s.GetMetadata(ctx, "embeddings.provider")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got != "ollama" {
		t.Errorf("GetMetadata = %q, want ollama", got)
	}

	// Overwrite
	if err := s.SetMetadata(ctx, "embeddings.provider", "simulated"); err != nil {
		t.Fatalf("SetMetadata overwrite: %v", err)
	}
	got, _ = s.GetMetadata(ctx, "embeddings.provider")
	if got != "simulated" {
		t.Errorf("after overwrite GetMetadata = %q, want simulated", got)
	}
}

func TestMetadataUnsetKey(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetMetadata(context.Background(), "never-set")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got != "" {
		t.Errorf("GetMetadata on unset key = %q, want empty", got)
	}
}

func TestMetadataReservedKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMetadata(ctx, "schema_version", "99"); err == nil {
		t.Error("SetMetadata allowed writing schema_version")
	}
	if err := s.DeleteMetadata(ctx, "schema_version"); err == nil {
		t.Error("DeleteMetadata allowed deleting schema_version")
	}
}

func TestMetadataDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMetadata(ctx, "summary.model", "claude-3-5-haiku-latest"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata(ctx, "backup.hourly", "12"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	all, err := s.AllMetadata(ctx)
	if err != nil {
		t.Fatalf("AllMetadata: %v", err)
	}
	if all["summary.model"] != "claude-3-5-haiku-latest" || all["backup.hourly"] != "12" {
		t.Errorf("AllMetadata = %v, missing expected keys", all)
	}
	if _, ok := all["schema_version"]; ok {
		t.Error("AllMetadata exposed schema_version")
	}

	if err := s.DeleteMetadata(ctx, "backup.hourly"); err != nil {
		t.Fatalf("DeleteMetadata: %v", err)
	}
	got, _ := s.GetMetadata(ctx, "backup.hourly")
	if got != "" {
		t.Errorf("deleted key still returns %q", got)
	}

	// Deleting an unset key succeeds.
	if err := s.DeleteMetadata(ctx, "backup.hourly"); err != nil {
		t.Fatalf("DeleteMetadata on unset key: %v", err)
	}
}
