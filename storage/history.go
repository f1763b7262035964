// Package storage persists conversation history in SQLite.
//
// Each conversation is one row holding a JSON-encoded message array keyed by
// owner id. The array is size-bounded: once its serialized form crosses a
// hard ceiling, the whole array is archived into a second table and the
// conversation restarts empty. Archives are pruned to a fixed count per
// owner.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fogmoe/model"
)

// ErrStorage wraps every storage-layer failure (connection, serialization,
// transaction). Callers match it with errors.Is and must not assume an
// append succeeded when it is returned; no partial persistence occurs.
var ErrStorage = errors.New("history storage error")

// WarningLevel signals how close a conversation is to its size ceiling.
type WarningLevel int

const (
	WarningNone WarningLevel = iota
	// WarningNearLimit: the array crossed the soft ceiling; the append
	// still happened normally.
	WarningNearLimit
	// WarningOverflow: the array crossed the hard ceiling and was archived
	// and reset before the append.
	WarningOverflow
)

func (w WarningLevel) String() string {
	switch w {
	case WarningNearLimit:
		return "near_limit"
	case WarningOverflow:
		return "overflow"
	default:
		return "none"
	}
}

// Limits bound the per-conversation message array.
type Limits struct {
	// SoftCeilingBytes triggers WarningNearLimit when the serialized array
	// exceeds it.
	SoftCeilingBytes int
	// HardCeilingBytes triggers archival-and-reset when the serialized
	// array exceeds it.
	HardCeilingBytes int
	// ArchiveRetention is the number of snapshots kept per owner; older
	// ones are pruned on each archival.
	ArchiveRetention int
}

// DefaultLimits returns the production ceilings.
func DefaultLimits() Limits {
	return Limits{
		SoftCeilingBytes: 110000,
		HardCeilingBytes: 120000,
		ArchiveRetention: 100,
	}
}

// ArchivedSnapshot is one archived message array. Snapshots are created
// exactly once per overflow event and never mutated.
type ArchivedSnapshot struct {
	ID        string
	OwnerID   int64
	Snapshot  []byte // the full prior messages JSON
	CreatedAt time.Time
}

// Messages decodes the snapshot blob back into a message slice.
func (s *ArchivedSnapshot) Messages() ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(s.Snapshot, &msgs); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return msgs, nil
}

// AppendResult reports what a single Append did.
type AppendResult struct {
	Archived bool
	Warning  WarningLevel
	// Snapshots holds the snapshot created by this append (if any) so the
	// caller can offer it for export.
	Snapshots []ArchivedSnapshot
}

// lockStripes bounds the striped per-conversation mutex table.
const lockStripes = 64

// HistoryStore is the conversation history store.
//
// The read-modify-write cycle of Append runs under a per-conversation
// mutex (striped by owner id) and inside one SQL transaction, so two
// concurrent appends to the same conversation can neither lose an update
// nor both decide to archive.
type HistoryStore struct {
	db     *sql.DB
	limits Limits
	locks  [lockStripes]sync.Mutex
}

// NewHistoryStore opens (or creates) history.db under dataDir. Zero-valued
// limits fields fall back to DefaultLimits.
func NewHistoryStore(dataDir string, limits Limits) (*HistoryStore, error) {
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	def := DefaultLimits()
	if limits.SoftCeilingBytes <= 0 {
		limits.SoftCeilingBytes = def.SoftCeilingBytes
	}
	if limits.HardCeilingBytes <= 0 {
		limits.HardCeilingBytes = def.HardCeilingBytes
	}
	if limits.ArchiveRetention <= 0 {
		limits.ArchiveRetention = def.ArchiveRetention
	}

	store := &HistoryStore{db: db, limits: limits}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (hs *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		owner_id INTEGER PRIMARY KEY,
		messages TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS archives (
		id TEXT PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_archives_owner ON archives(owner_id, created_at);
	`

	_, err := hs.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (hs *HistoryStore) Close() error {
	return hs.db.Close()
}

// Limits returns the configured ceilings.
func (hs *HistoryStore) Limits() Limits {
	return hs.limits
}

func (hs *HistoryStore) lock(ownerID int64) *sync.Mutex {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", ownerID)
	return &hs.locks[h.Sum32()%lockStripes]
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}

// Append adds one message to a conversation, archiving first when the
// existing serialized array already exceeds the hard ceiling.
//
// The size check runs against the array as it was *before* this append:
// on overflow the complete prior array becomes one ArchivedSnapshot,
// snapshots beyond the retention count are pruned, and the new message
// becomes the sole entry of the freshly emptied array. At most one archive
// event happens per call.
func (hs *HistoryStore) Append(ctx context.Context, ownerID int64, msg model.Message) (AppendResult, error) {
	mu := hs.lock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	var result AppendResult

	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return result, storageErr("begin append", err)
	}
	defer tx.Rollback()

	msgs, raw, err := fetchMessagesTx(ctx, tx, ownerID)
	if err != nil {
		return result, storageErr("read conversation", err)
	}

	switch {
	case len(raw) > hs.limits.HardCeilingBytes:
		snap, err := archiveTx(ctx, tx, ownerID, raw, hs.limits.ArchiveRetention)
		if err != nil {
			return result, storageErr("archive conversation", err)
		}
		msgs = nil
		result.Archived = true
		result.Warning = WarningOverflow
		result.Snapshots = []ArchivedSnapshot{*snap}
	case len(raw) > hs.limits.SoftCeilingBytes:
		result.Warning = WarningNearLimit
	}

	msgs = append(msgs, msg)
	if err := writeMessagesTx(ctx, tx, ownerID, msgs); err != nil {
		return AppendResult{}, storageErr("write conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return AppendResult{}, storageErr("commit append", err)
	}

	return result, nil
}

// Fetch returns the decoded message array for a conversation, or an empty
// slice when no record exists. Pure read, no side effects.
func (hs *HistoryStore) Fetch(ctx context.Context, ownerID int64) ([]model.Message, error) {
	var blob string
	err := hs.db.QueryRowContext(ctx,
		`SELECT messages FROM conversations WHERE owner_id = ?`, ownerID).Scan(&blob)
	if err == sql.ErrNoRows {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, storageErr("fetch conversation", err)
	}

	var msgs []model.Message
	if err := json.Unmarshal([]byte(blob), &msgs); err != nil {
		return nil, storageErr("decode conversation", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// ArchiveNow forces an archive-and-reset regardless of the size ceiling,
// returning the snapshot. It is a no-op returning nil when the conversation
// is already empty. Used by the user-facing "clear" flow and by near-limit
// escalation.
func (hs *HistoryStore) ArchiveNow(ctx context.Context, ownerID int64) (*ArchivedSnapshot, error) {
	mu := hs.lock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin archive", err)
	}
	defer tx.Rollback()

	msgs, raw, err := fetchMessagesTx(ctx, tx, ownerID)
	if err != nil {
		return nil, storageErr("read conversation", err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	snap, err := archiveTx(ctx, tx, ownerID, raw, hs.limits.ArchiveRetention)
	if err != nil {
		return nil, storageErr("archive conversation", err)
	}

	if err := writeMessagesTx(ctx, tx, ownerID, nil); err != nil {
		return nil, storageErr("reset conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit archive", err)
	}

	return snap, nil
}

// ListArchives returns snapshots for an owner, newest first.
func (hs *HistoryStore) ListArchives(ctx context.Context, ownerID int64) ([]ArchivedSnapshot, error) {
	rows, err := hs.db.QueryContext(ctx, `
	SELECT id, owner_id, snapshot, created_at
	FROM archives
	WHERE owner_id = ?
	ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, storageErr("list archives", err)
	}
	defer rows.Close()

	var snaps []ArchivedSnapshot
	for rows.Next() {
		var snap ArchivedSnapshot
		var blob string
		if err := rows.Scan(&snap.ID, &snap.OwnerID, &blob, &snap.CreatedAt); err != nil {
			return nil, storageErr("scan archive", err)
		}
		snap.Snapshot = []byte(blob)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list archives", err)
	}
	return snaps, nil
}

// fetchMessagesTx reads and decodes one conversation inside a transaction.
// The raw serialized form is returned alongside so the caller can measure
// its byte length without re-marshaling.
func fetchMessagesTx(ctx context.Context, tx *sql.Tx, ownerID int64) ([]model.Message, []byte, error) {
	var blob string
	err := tx.QueryRowContext(ctx,
		`SELECT messages FROM conversations WHERE owner_id = ?`, ownerID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var msgs []model.Message
	if err := json.Unmarshal([]byte(blob), &msgs); err != nil {
		return nil, nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, []byte(blob), nil
}

// writeMessagesTx persists one conversation array in a single upsert.
func writeMessagesTx(ctx context.Context, tx *sql.Tx, ownerID int64, msgs []model.Message) error {
	if msgs == nil {
		msgs = []model.Message{}
	}
	blob, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO conversations (owner_id, messages, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(owner_id) DO UPDATE SET messages = excluded.messages, updated_at = excluded.updated_at
	`, ownerID, string(blob), time.Now().UTC())
	return err
}

// archiveTx stores the raw prior array as a new snapshot and prunes old
// snapshots beyond the retention count.
func archiveTx(ctx context.Context, tx *sql.Tx, ownerID int64, raw []byte, retention int) (*ArchivedSnapshot, error) {
	snap := &ArchivedSnapshot{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Snapshot:  raw,
		CreatedAt: time.Now().UTC(),
	}

	_, err := tx.ExecContext(ctx, `
	INSERT INTO archives (id, owner_id, snapshot, created_at)
	VALUES (?, ?, ?, ?)
	`, snap.ID, snap.OwnerID, string(snap.Snapshot), snap.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
	DELETE FROM archives
	WHERE owner_id = ? AND id NOT IN (
		SELECT id FROM archives
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	)
	`, ownerID, ownerID, retention)
	if err != nil {
		return nil, err
	}

	return snap, nil
}
