package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Device is a row in the device registry.
type Device struct {
	ID        int64
	Identity  string
	Vendor    string
	Model     string
	LastPath  string
	Hint      sql.NullString
	FirstSeen time.Time
	LastSeen  time.Time
}

// UnlockEvent is a row in the unlock audit log.
type UnlockEvent struct {
	ID       int64
	Identity string
	At       time.Time
	// Method is "passphrase" or "keyring".
	Method string
	OK     bool
}

// Unlock methods recorded in the audit log.
const (
	MethodPassphrase = "passphrase"
	MethodKeyring    = "keyring"
)

// Repository wraps the SQLite database with typed accessors.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database.
func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

// Close closes the underlying DB connection used by the Repository.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// RecordDevice upserts a device by identity, refreshing last_seen and
// last_path. Returns the device row id.
func (r *Repository) RecordDevice(identity, vendor, model, path string) (int64, error) {
	_, err := r.db.Exec(`
		INSERT INTO devices (identity, vendor, model, last_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			vendor = excluded.vendor,
			model = excluded.model,
			last_path = excluded.last_path,
			last_seen = CURRENT_TIMESTAMP`,
		identity, vendor, model, path)
	if err != nil {
		return 0, fmt.Errorf("record device: %w", err)
	}
	var id int64
	if err := r.db.QueryRow("SELECT id FROM devices WHERE identity = ?", identity).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// SetHint stores the password hint text read from the drive.
func (r *Repository) SetHint(identity, hint string) error {
	res, err := r.db.Exec("UPDATE devices SET hint = ? WHERE identity = ?", hint, identity)
	if err != nil {
		return fmt.Errorf("set hint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown device: %s", identity)
	}
	return nil
}

// GetDevice fetches a device by identity, or nil when unknown.
func (r *Repository) GetDevice(identity string) (*Device, error) {
	row := r.db.QueryRow(`
		SELECT id, identity, COALESCE(vendor, ''), COALESCE(model, ''),
		       COALESCE(last_path, ''), hint, first_seen, last_seen
		FROM devices WHERE identity = ?`, identity)
	var d Device
	err := row.Scan(&d.ID, &d.Identity, &d.Vendor, &d.Model, &d.LastPath, &d.Hint, &d.FirstSeen, &d.LastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDevices returns all known devices, most recently seen first.
func (r *Repository) ListDevices() ([]Device, error) {
	rows, err := r.db.Query(`
		SELECT id, identity, COALESCE(vendor, ''), COALESCE(model, ''),
		       COALESCE(last_path, ''), hint, first_seen, last_seen
		FROM devices ORDER BY last_seen DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Identity, &d.Vendor, &d.Model, &d.LastPath, &d.Hint, &d.FirstSeen, &d.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ForgetDevice removes a device and its unlock history.
func (r *Repository) ForgetDevice(identity string) error {
	res, err := r.db.Exec("DELETE FROM devices WHERE identity = ?", identity)
	if err != nil {
		return fmt.Errorf("forget device: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown device: %s", identity)
	}
	// SQLite only enforces the cascade with foreign keys on; delete
	// explicitly so history never outlives the device row.
	_, err = r.db.Exec(`DELETE FROM unlock_events WHERE device_id NOT IN (SELECT id FROM devices)`)
	return err
}

// RecordUnlock appends an unlock attempt to the audit log.
func (r *Repository) RecordUnlock(identity, method string, ok bool) error {
	var deviceID int64
	if err := r.db.QueryRow("SELECT id FROM devices WHERE identity = ?", identity).Scan(&deviceID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("unknown device: %s", identity)
		}
		return err
	}
	_, err := r.db.Exec("INSERT INTO unlock_events (device_id, method, ok) VALUES (?, ?, ?)", deviceID, method, ok)
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}

// ListUnlocks returns the most recent unlock attempts, newest first.
func (r *Repository) ListUnlocks(limit int) ([]UnlockEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT e.id, d.identity, e.at, e.method, e.ok
		FROM unlock_events e JOIN devices d ON d.id = e.device_id
		ORDER BY e.at DESC, e.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []UnlockEvent
	for rows.Next() {
		var e UnlockEvent
		if err := rows.Scan(&e.ID, &e.Identity, &e.At, &e.Method, &e.OK); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
