package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	journalBucket = "invocations"
	// indexBucket maps invocation id → journal key
	indexBucket = "invocation_ids"
)

// previewLen caps the stored result text
const previewLen = 200

// JournalEntry is the persisted summary of one finished invocation
type JournalEntry struct {
	ID         string        `json:"id"`
	Agent      string        `json:"agent"`
	Operation  string        `json:"operation"`
	Template   string        `json:"template"`
	Attempts   int           `json:"attempts"`
	State      string        `json:"state"`
	Error      string        `json:"error,omitempty"`
	Preview    string        `json:"preview,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Journal keeps an append-only record of invocations in a bbolt file.
// Recorded results are never served back as completions.
type Journal struct {
	db     *bolt.DB
	logger *slog.Logger
}

// OpenJournal opens or creates the journal at path
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to create journal directory").
			WithContext(errors.ContextPath, path)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to open journal").
			WithContext(errors.ContextPath, path)
	}

	if err := db.Update(initBuckets); err != nil {
		db.Close()
		return nil, errors.FileSystemErrorf(err, "failed to initialise journal").
			WithContext(errors.ContextPath, path)
	}

	return &Journal{
		db:     db,
		logger: slog.Default().With("component", "journal"),
	}, nil
}

// Record persists a summary of inv. Safe for concurrent use.
func (j *Journal) Record(inv *agent.Invocation) error {
	entry := JournalEntry{
		ID:         inv.ID,
		Agent:      inv.Task.Agent,
		Operation:  inv.Task.Operation,
		Attempts:   inv.Attempts,
		State:      inv.State.String(),
		Preview:    preview(inv.Result),
		StartedAt:  inv.StartedAt,
		FinishedAt: inv.FinishedAt,
		Duration:   inv.Duration(),
	}
	if inv.Task.Template != nil {
		entry.Template = inv.Task.Template.Name()
	}
	if inv.Err != nil {
		entry.Error = inv.Err.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh, "failed to encode journal entry")
	}

	key := journalKey(entry)
	err = j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(journalBucket)).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket([]byte(indexBucket)).Put([]byte(entry.ID), key)
	})
	if err != nil {
		return errors.FileSystemErrorf(err, "failed to write journal entry")
	}

	j.logger.Debug("recorded invocation", "invocation_id", entry.ID, "state", entry.State)
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (j *Journal) Recent(limit int) ([]JournalEntry, error) {
	var out []JournalEntry
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(journalBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var entry JournalEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt journal entry %s: %w", k, err)
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to read journal")
	}
	return out, nil
}

// Get returns the entry recorded for an invocation id. An unknown id
// yields an error matching ErrNotFound.
func (j *Journal) Get(id string) (*JournalEntry, error) {
	var raw []byte
	err := j.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket([]byte(indexBucket)).Get([]byte(id))
		if key == nil {
			return nil
		}
		if v := tx.Bucket([]byte(journalBucket)).Get(key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to read journal")
	}
	if raw == nil {
		return nil, fmt.Errorf("invocation %s: %w", id, ErrNotFound)
	}

	var entry JournalEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.FileSystemErrorf(err, "corrupt journal entry %s", id)
	}
	return &entry, nil
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}

// initBuckets creates both buckets and indexes entries written before the
// id index existed
func initBuckets(tx *bolt.Tx) error {
	entries, err := tx.CreateBucketIfNotExists([]byte(journalBucket))
	if err != nil {
		return err
	}
	index, err := tx.CreateBucketIfNotExists([]byte(indexBucket))
	if err != nil {
		return err
	}
	if k, _ := index.Cursor().First(); k != nil {
		return nil
	}
	return entries.ForEach(func(k, v []byte) error {
		var entry JournalEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("corrupt journal entry %s: %w", k, err)
		}
		return index.Put([]byte(entry.ID), append([]byte(nil), k...))
	})
}

// journalKey orders entries by start time
func journalKey(e JournalEntry) []byte {
	return []byte(e.StartedAt.UTC().Format("20060102T150405.000000000") + "/" + e.ID)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
