// Package precomputed persists the non-series results of an analyze pass so
// later profile passes can start from them instead of recomputing.
package precomputed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/flightfile"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// keyVersion is bumped whenever the stored signal layout changes, so old
// entries are simply not found.
const keyVersion = "v1"

// Store is a badger backed result store keyed by flight.
type Store struct {
	db *badger.DB
}

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open opens the store in dir. An empty dir keeps everything in memory.
func Open(ctx context.Context, dir string) (*Store, error) {
	logger := ctxlog.FromContext(ctx).With("component", "precomputed")

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open precomputed store: %w", err)
	}
	logger.Debug("Precomputed store opened.", "dir", dir, "in_memory", dir == "")
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func prefix(key string) []byte {
	return []byte(keyVersion + "/" + key + "/")
}

// Save replaces everything stored under key with signals in one
// transaction.
func (s *Store) Save(ctx context.Context, key string, signals map[string]*signal.Signal) error {
	logger := ctxlog.FromContext(ctx)
	p := prefix(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{Prefix: p})
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		for name, sig := range signals {
			b, err := flightfile.MarshalSignal(sig)
			if err != nil {
				return fmt.Errorf("failed to encode precomputed '%s': %w", name, err)
			}
			if err := txn.Set(append(append([]byte{}, p...), name...), b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write precomputed results for '%s': %w", key, err)
	}

	logger.Debug("Precomputed results saved.", "key", key, "count", len(signals))
	return nil
}

// Load returns every signal stored under key. An unknown key yields an empty
// map.
func (s *Store) Load(ctx context.Context, key string) (map[string]*signal.Signal, error) {
	logger := ctxlog.FromContext(ctx)
	p := prefix(key)
	out := map[string]*signal.Signal{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: p, PrefetchValues: true, PrefetchSize: 16})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(p):])
			err := item.Value(func(val []byte) error {
				sig, err := flightfile.UnmarshalSignal(val)
				if err != nil {
					return err
				}
				out[name] = sig
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read precomputed '%s': %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Precomputed results loaded.", "key", key, "count", len(out))
	return out, nil
}
