package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	"github.com/MagnumMax/skyluxse-sub003/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestIngestedEventsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_ingested_events.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS ingested_events",
		"CREATE TYPE ingest_status_enum",
		"ux_ingested_events_external_id",
		"DROP TABLE IF EXISTS ingested_events",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxEntriesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_outbox_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_entries",
		"CREATE TYPE outbox_status_enum",
		"CREATE TYPE target_system_enum",
		"CREATE TYPE event_type_enum",
		"CHECK (attempts >= 0)",
		"ix_outbox_entries_due",
		"DROP TABLE IF EXISTS outbox_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationCoversEveryEventType(t *testing.T) {
	content := readMigration(t, "*_create_outbox_entries.sql")

	eventTypes := []enums.OutboxEventType{
		enums.EventBookingStatusChanged,
		enums.EventBookingConfirmed,
		enums.EventBookingSettled,
		enums.EventTaskCreated,
		enums.EventServiceAdded,
		enums.EventSalesOrderRequested,
		enums.EventNotificationRequested,
	}
	for _, eventType := range eventTypes {
		if !strings.Contains(content, "'"+string(eventType)+"'") {
			t.Errorf("event_type_enum is missing %q", eventType)
		}
	}

	statuses := []enums.OutboxStatus{
		enums.OutboxStatusPending,
		enums.OutboxStatusProcessing,
		enums.OutboxStatusSucceeded,
		enums.OutboxStatusFailed,
		enums.OutboxStatusExhausted,
	}
	for _, status := range statuses {
		if !strings.Contains(content, "'"+string(status)+"'") {
			t.Errorf("outbox_status_enum is missing %q", status)
		}
	}
}

func TestBookingsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_bookings.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"CREATE TYPE booking_lifecycle_status",
		"ux_bookings_crm_deal_id",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Vehicle Index!!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_vehicle_index.sql") {
		t.Errorf("unexpected filename %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Errorf("generated migration does not validate: %v", err)
	}
}
