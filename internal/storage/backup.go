package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Backup writes a consistent snapshot of the ledger database to dst.
// VACUUM INTO produces a compacted copy without blocking readers; holding
// the writer mutex keeps mutations out while the snapshot is taken.
func (s *Store) Backup(ctx context.Context, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	// VACUUM INTO refuses to overwrite.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale backup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}

	slog.InfoContext(ctx, "ledger backed up", "destination", dst)
	return nil
}

// Restore replaces the ledger database with the file at src and reopens the
// connection. The swap goes through a temp file in the target directory and
// a rename, so a crash mid-restore never leaves a half-written store.
func (s *Store) Restore(ctx context.Context, src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat restore source: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database before restore: %w", err)
	}

	tmp, err := copyToTemp(src, filepath.Dir(s.path))
	if err != nil {
		s.reopenAfterFailedSwap(ctx)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		s.reopenAfterFailedSwap(ctx)
		return fmt.Errorf("swap in restored database: %w", err)
	}

	db, err := openAndPing(s.path)
	if err != nil {
		return fmt.Errorf("reopen restored database: %w", err)
	}
	s.db = db

	slog.InfoContext(ctx, "ledger restored", "source", src)
	return nil
}

// reopenAfterFailedSwap puts the original database back in service when a
// restore aborts between close and rename, so the store stays usable.
func (s *Store) reopenAfterFailedSwap(ctx context.Context) {
	db, err := openAndPing(s.path)
	if err != nil {
		slog.ErrorContext(ctx, "reopen after failed restore", "error", err, "path", s.path)
		return
	}
	s.db = db
}

func copyToTemp(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open restore source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "restore-*.db")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("copy restore source: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
