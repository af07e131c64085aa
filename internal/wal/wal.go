package wal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jasobih/gigboard/pkg/logger"
	"go.uber.org/zap"
)

// Entry records one thread append before it reaches the database.
type Entry struct {
	MessageID string    `json:"message_id"`
	GigID     string    `json:"gig_id"`
	SenderID  string    `json:"sender_id"`
	Seq       uint64    `json:"seq"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WAL is an append-only, fsynced journal of thread messages. Appends
// are journaled here before the database insert, so a crash between
// the two can be replayed.
type WAL struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func NewWAL(filePath string) (*WAL, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &WAL{
		filePath: filePath,
		file:     file,
	}, nil
}

// Write appends an entry and syncs it to disk.
func (w *WAL) Write(entry Entry) error {
	start := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("WAL: failed to marshal entry",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	if _, err := w.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("WAL: failed to write to file",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	// Force sync to disk (durability)
	if err := w.file.Sync(); err != nil {
		logger.Log.Error("WAL: failed to sync to disk",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("WAL: entry written and synced",
		zap.String("message_id", entry.MessageID),
		zap.String("gig_id", entry.GigID),
		zap.Uint64("seq", entry.Seq),
		zap.Duration("total_duration", time.Since(start)),
	)

	return nil
}

// GetAllEntries returns every journaled entry in append order.
func (w *WAL) GetAllEntries() ([]Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.readAllUnsafe()
}

// Cleanup drops entries whose messages have been persisted, rewriting
// the journal atomically via a temp file rename.
func (w *WAL) Cleanup(persistedIDs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	allEntries, err := w.readAllUnsafe()
	if err != nil {
		logger.Log.Error("WAL: failed to read entries for cleanup", zap.Error(err))
		return err
	}

	persisted := make(map[string]bool, len(persistedIDs))
	for _, id := range persistedIDs {
		persisted[id] = true
	}

	var remaining []Entry
	for _, entry := range allEntries {
		if !persisted[entry.MessageID] {
			remaining = append(remaining, entry)
		}
	}

	if err := w.file.Close(); err != nil {
		logger.Log.Error("WAL: failed to close file for cleanup", zap.Error(err))
		return err
	}

	tempFile := w.filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		logger.Log.Error("WAL: failed to create temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return err
	}

	for _, entry := range remaining {
		data, _ := json.Marshal(entry)
		f.WriteString(string(data) + "\n")
	}

	f.Sync()
	f.Close()

	if err := os.Rename(tempFile, w.filePath); err != nil {
		logger.Log.Error("WAL: failed to rename temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return err
	}

	// Reopen with the same flags so appends keep working
	newFile, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		logger.Log.Error("WAL: failed to reopen file after cleanup",
			zap.String("file_path", w.filePath),
			zap.Error(err),
		)
		return err
	}
	w.file = newFile

	logger.Log.Debug("WAL: cleanup completed",
		zap.Int("before", len(allEntries)),
		zap.Int("after", len(remaining)),
	)

	return nil
}

// Close closes the underlying file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// readAllUnsafe reads all entries without locking; callers hold w.mu.
func (w *WAL) readAllUnsafe() ([]Entry, error) {
	if _, err := w.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var entries []Entry
	scanner := bufio.NewScanner(w.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Log.Warn("WAL: skipping corrupt entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
