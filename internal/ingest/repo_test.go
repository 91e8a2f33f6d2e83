package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

func newIngestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.IngestedEvent{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func storedEvent(externalID string) *models.IngestedEvent {
	return &models.IngestedEvent{
		ExternalID:        externalID,
		RawPayload:        json.RawMessage(`{"id":1}`),
		SignatureVerified: true,
		ProcessingStatus:  enums.IngestStatusReceived,
	}
}

func TestInsertIfNewIgnoresReplays(t *testing.T) {
	repo := NewRepository(newIngestDB(t))
	ctx := context.Background()

	created, err := repo.InsertIfNew(ctx, storedEvent("evt-1"))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !created {
		t.Fatal("first insert should create the row")
	}

	created, err = repo.InsertIfNew(ctx, storedEvent("evt-1"))
	if err != nil {
		t.Fatalf("replay insert: %v", err)
	}
	if created {
		t.Fatal("replay must not create a second row")
	}

	found, err := repo.FindByExternalID(ctx, "evt-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ExternalID != "evt-1" {
		t.Errorf("external id = %q", found.ExternalID)
	}
}

func TestDeleteProcessedBeforeKeepsUnfinishedRows(t *testing.T) {
	conn := newIngestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i, status := range []enums.IngestStatus{
		enums.IngestStatusProcessed,
		enums.IngestStatusProcessed,
		enums.IngestStatusIgnoredPending,
		enums.IngestStatusFailed,
	} {
		event := storedEvent(fmt.Sprintf("evt-%d", i))
		event.ProcessingStatus = status
		if _, err := repo.InsertIfNew(ctx, event); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	old := time.Now().UTC().Add(-120 * 24 * time.Hour)
	// age everything except one processed row
	if err := conn.Model(&models.IngestedEvent{}).
		Where("external_id <> ?", "evt-1").
		Update("received_at", old).Error; err != nil {
		t.Fatalf("aging rows: %v", err)
	}

	deleted, err := repo.DeleteProcessedBefore(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	var remaining int64
	if err := conn.Model(&models.IngestedEvent{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 3 {
		t.Errorf("remaining = %d, want 3", remaining)
	}
}
