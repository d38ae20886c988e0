// Package cache implements the per-user credential cache: a record of
// recently authenticated (session, tty) pairs that suppresses redundant
// password prompts inside a freshness window.
//
// Records are fixed-stride and versionless; any file whose size is not a
// whole number of records is treated as empty rather than as an error, so
// the format can evolve without a migration. Timestamps come from a
// boot-anchored clock, which invalidates every entry across a reboot with
// no bookkeeping at shutdown.
package cache

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"pezzo-go/errors"
	"pezzo-go/logging"
)

// DefaultBaseDir is where per-user cache files live. The directory is
// created root-owned with mode 0700.
const DefaultBaseDir = "/var/run/pezzo"

// recordSize is the packed little-endian stride of one entry:
// session_id u32, tty u64, timestamp u64.
const recordSize = 4 + 8 + 8

// Entry is one cached authentication.
type Entry struct {
	SessionID uint32
	TtyDevice uint64
	Timestamp uint64
}

// Store is the in-memory view of one user's cache file.
type Store struct {
	baseDir string
	user    string
	entries []Entry
}

func cachePath(baseDir, username string) string {
	return filepath.Join(baseDir, username)
}

func ensureBaseDir(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return nil
}

// flock acquires an advisory lock, retrying on EINTR.
func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}

func decode(buf []byte) []Entry {
	n := len(buf) / recordSize
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		rec := buf[i*recordSize:]
		entries = append(entries, Entry{
			SessionID: binary.LittleEndian.Uint32(rec[0:4]),
			TtyDevice: binary.LittleEndian.Uint64(rec[4:12]),
			Timestamp: binary.LittleEndian.Uint64(rec[12:20]),
		})
	}
	return entries
}

func encode(entries []Entry) []byte {
	buf := make([]byte, len(entries)*recordSize)
	for i, e := range entries {
		rec := buf[i*recordSize:]
		binary.LittleEndian.PutUint32(rec[0:4], e.SessionID)
		binary.LittleEndian.PutUint64(rec[4:12], e.TtyDevice)
		binary.LittleEndian.PutUint64(rec[12:20], e.Timestamp)
	}
	return buf
}

// readLocked reads and decodes the whole file, treating a size that is not a
// multiple of the record stride as an empty cache.
func readLocked(f *os.File, user string) []Entry {
	buf, err := io.ReadAll(f)
	if err != nil {
		logging.Warn("cache unreadable, treating as empty", "user", user, "err", err)
		return nil
	}
	if len(buf)%recordSize != 0 {
		logging.Warn("cache size not a record multiple, treating as empty",
			"user", user, "size", len(buf))
		return nil
	}
	return decode(buf)
}

// Open loads the user's cache under a shared lock. A missing file is an
// empty cache.
func Open(baseDir, username string) (*Store, error) {
	if err := ensureBaseDir(baseDir); err != nil {
		return nil, errors.Wrap(err, errors.KindCacheCorrupt, "open")
	}

	s := &Store{baseDir: baseDir, user: username}

	f, err := os.Open(cachePath(baseDir, username))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, errors.KindCacheCorrupt, "open")
	}
	defer f.Close()

	if err := flock(f, unix.LOCK_SH); err != nil {
		return nil, errors.Wrap(err, errors.KindCacheCorrupt, "lock")
	}
	defer flock(f, unix.LOCK_UN)

	s.entries = readLocked(f, username)
	return s, nil
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// IsFresh reports whether an entry exists for exactly this session and tty
// whose age does not exceed maxAge seconds.
func (s *Store) IsFresh(sessionID uint32, tty uint64, now, maxAge uint64) bool {
	for _, e := range s.entries {
		if e.SessionID == sessionID && e.TtyDevice == tty &&
			e.Timestamp <= now && now-e.Timestamp <= maxAge {
			return true
		}
	}
	return false
}

// withExclusive opens (creating if needed) the cache file, takes the
// exclusive lock, applies fn to the current on-disk entries, rewrites the
// file with fn's result, and flushes it.
func (s *Store) withExclusive(fn func(entries []Entry) []Entry) error {
	if err := ensureBaseDir(s.baseDir); err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "update")
	}

	f, err := os.OpenFile(cachePath(s.baseDir, s.user), os.O_RDWR|os.O_CREATE, 0o700)
	if err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "update")
	}
	defer f.Close()

	if err := flock(f, unix.LOCK_EX); err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "lock")
	}
	defer flock(f, unix.LOCK_UN)

	entries := fn(readLocked(f, s.user))

	if err := f.Truncate(0); err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "truncate")
	}
	if _, err := f.WriteAt(encode(entries), 0); err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "write")
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, errors.KindCacheCorrupt, "sync")
	}

	s.entries = entries
	return nil
}

// Touch records a successful authentication for the (session, tty) pair,
// overwriting a matching entry or appending a new one.
func (s *Store) Touch(sessionID uint32, tty uint64, now uint64) error {
	return s.withExclusive(func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].SessionID == sessionID && entries[i].TtyDevice == tty {
				entries[i].Timestamp = now
				return entries
			}
		}
		return append(entries, Entry{SessionID: sessionID, TtyDevice: tty, Timestamp: now})
	})
}

// Purge drops every entry older than maxAge seconds and rewrites the file.
func (s *Store) Purge(now, maxAge uint64) error {
	return s.withExclusive(func(entries []Entry) []Entry {
		kept := entries[:0]
		for _, e := range entries {
			if e.Timestamp <= now && now-e.Timestamp <= maxAge {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// Clear drops every entry but keeps the file (the reset-timestamp
// operation).
func (s *Store) Clear() error {
	return s.withExclusive(func([]Entry) []Entry {
		return nil
	})
}

// Erase removes the user's cache file entirely. A missing file is fine.
func Erase(baseDir, username string) error {
	err := os.Remove(cachePath(baseDir, username))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.KindCacheCorrupt, "erase")
	}
	return nil
}
