package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drei/wdpass/internal/config"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := openAt(filepath.Join(t.TempDir(), "wdpass.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	r := NewRepository(db)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestInitDBCreatesFileAndSchema(t *testing.T) {
	tmp := t.TempDir()
	// Ensure user home resolves to tmp for DBPath
	_ = os.Setenv("HOME", tmp)
	_ = os.Setenv("USERPROFILE", tmp)

	dbPath, err := config.DBPath()
	if err != nil {
		t.Fatalf("DBPath(): %v", err)
	}
	_ = os.Remove(dbPath)

	db, err := InitDB()
	if err != nil {
		t.Fatalf("InitDB() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	var count int
	r := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='devices'")
	if err := r.Scan(&count); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected table 'devices' to exist")
	}
}

func TestRecordDeviceUpserts(t *testing.T) {
	r := setupTestRepo(t)

	id1, err := r.RecordDevice("WD My Passport 0820", "WD", "My Passport 0820", "/dev/sdb")
	if err != nil {
		t.Fatalf("RecordDevice: %v", err)
	}
	id2, err := r.RecordDevice("WD My Passport 0820", "WD", "My Passport 0820", "/dev/sdc")
	if err != nil {
		t.Fatalf("RecordDevice (again): %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same row on upsert, got %d and %d", id1, id2)
	}

	devs, err := r.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devs))
	}
	if devs[0].LastPath != "/dev/sdc" {
		t.Fatalf("last_path not refreshed: %q", devs[0].LastPath)
	}
}

func TestSetHint(t *testing.T) {
	r := setupTestRepo(t)
	if _, err := r.RecordDevice("dev-a", "WD", "My Passport", "/dev/sdb"); err != nil {
		t.Fatalf("RecordDevice: %v", err)
	}

	if err := r.SetHint("dev-a", "favorite color"); err != nil {
		t.Fatalf("SetHint: %v", err)
	}
	d, err := r.GetDevice("dev-a")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if d == nil || !d.Hint.Valid || d.Hint.String != "favorite color" {
		t.Fatalf("hint not stored: %+v", d)
	}

	if err := r.SetHint("missing", "x"); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestUnlockAuditLog(t *testing.T) {
	r := setupTestRepo(t)
	if _, err := r.RecordDevice("dev-a", "WD", "My Passport", "/dev/sdb"); err != nil {
		t.Fatalf("RecordDevice: %v", err)
	}

	if err := r.RecordUnlock("dev-a", MethodPassphrase, false); err != nil {
		t.Fatalf("RecordUnlock: %v", err)
	}
	if err := r.RecordUnlock("dev-a", MethodKeyring, true); err != nil {
		t.Fatalf("RecordUnlock: %v", err)
	}

	events, err := r.ListUnlocks(10)
	if err != nil {
		t.Fatalf("ListUnlocks: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// newest first
	if events[0].Method != MethodKeyring || !events[0].OK {
		t.Fatalf("unexpected newest event: %+v", events[0])
	}
	if events[1].Method != MethodPassphrase || events[1].OK {
		t.Fatalf("unexpected oldest event: %+v", events[1])
	}
}

func TestRecordUnlockUnknownDevice(t *testing.T) {
	r := setupTestRepo(t)
	if err := r.RecordUnlock("ghost", MethodPassphrase, true); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestForgetDeviceRemovesHistory(t *testing.T) {
	r := setupTestRepo(t)
	if _, err := r.RecordDevice("dev-a", "WD", "My Passport", "/dev/sdb"); err != nil {
		t.Fatalf("RecordDevice: %v", err)
	}
	if err := r.RecordUnlock("dev-a", MethodPassphrase, true); err != nil {
		t.Fatalf("RecordUnlock: %v", err)
	}

	if err := r.ForgetDevice("dev-a"); err != nil {
		t.Fatalf("ForgetDevice: %v", err)
	}
	devs, err := r.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devs) != 0 {
		t.Fatalf("device not removed")
	}
	events, err := r.ListUnlocks(10)
	if err != nil {
		t.Fatalf("ListUnlocks: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("history not removed")
	}

	if err := r.ForgetDevice("dev-a"); err == nil {
		t.Fatal("expected error forgetting unknown device")
	}
}

func TestMigrationsAddHintColumn(t *testing.T) {
	// Simulate a pre-hint database and re-apply migrations.
	db, err := openAt(filepath.Join(t.TempDir(), "wdpass.db"))
	if err != nil {
		t.Fatalf("openAt: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("ALTER TABLE devices DROP COLUMN hint"); err != nil {
		t.Fatalf("drop hint column: %v", err)
	}
	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	var count int
	row := db.QueryRow("SELECT count(*) FROM pragma_table_info('devices') WHERE name = 'hint'")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("query column: %v", err)
	}
	if count != 1 {
		t.Fatalf("hint column missing after migration")
	}
}
