package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"
)

// Key layout:
//
//	d/<collection>/<id>         -> 8-byte sequence + document
//	o/<collection>/<sequence>   -> id
//
// The o/ keys make Scan follow insertion order.
const (
	docPrefix   = "d/"
	orderPrefix = "o/"
	seqKey      = "seq/records"
	seqLease    = 100
)

// BadgerConfig selects where the Badger engine keeps its files.
type BadgerConfig struct {
	Dir      string
	InMemory bool
}

// BadgerEngine implements Engine on an embedded Badger v3 database.
type BadgerEngine struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

func NewBadgerEngine(cfg BadgerConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	seq, err := db.GetSequence([]byte(seqKey), seqLease)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("badger: sequence: %w", err)
	}

	logger.Info("badger engine started", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return &BadgerEngine{db: db, seq: seq, logger: logger}, nil
}

func docKey(collection, id string) []byte {
	return []byte(docPrefix + collection + "/" + id)
}

func orderKey(collection string, n uint64) []byte {
	k := []byte(orderPrefix + collection + "/")
	return binary.BigEndian.AppendUint64(k, n)
}

func (e *BadgerEngine) Put(_ context.Context, collection, id string, doc []byte) error {
	return e.db.Update(func(txn *badger.Txn) error {
		var n uint64
		item, err := txn.Get(docKey(collection, id))
		switch {
		case err == nil:
			prev, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			n = binary.BigEndian.Uint64(prev[:8])
		case errors.Is(err, badger.ErrKeyNotFound):
			if n, err = e.seq.Next(); err != nil {
				return err
			}
			if err := txn.Set(orderKey(collection, n), []byte(id)); err != nil {
				return err
			}
		default:
			return err
		}

		val := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(doc)), n)
		val = append(val, doc...)
		return txn.Set(docKey(collection, id), val)
	})
}

func (e *BadgerEngine) Fetch(_ context.Context, collection, id string) ([]byte, error) {
	var doc []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc = val[8:]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *BadgerEngine) Remove(_ context.Context, collection, id string) error {
	return e.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(orderKey(collection, binary.BigEndian.Uint64(val[:8]))); err != nil {
			return err
		}
		return txn.Delete(docKey(collection, id))
	})
}

func (e *BadgerEngine) Scan(_ context.Context, collection string, fn func(id string, doc []byte) bool) error {
	return e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(orderPrefix + collection + "/")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			item, err := txn.Get(docKey(collection, string(id)))
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(string(id), val[8:]) {
				break
			}
		}
		return nil
	})
}

func (e *BadgerEngine) Close() error {
	if err := e.seq.Release(); err != nil {
		e.logger.Warn("badger: release sequence", "error", err)
	}
	return e.db.Close()
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
