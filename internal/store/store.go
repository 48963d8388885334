// Package store holds the storage engines and the typed repository that the
// credential, session and reservation stores are built on.
//
// An Engine keeps opaque JSON documents grouped by collection. Repository
// layers a record type on top of an Engine and assigns ids on insert.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrClosed   = errors.New("store closed")
)

// Engine is the persistence backend. Implementations must keep every call atomic
// on its own and must return ErrNotFound from Fetch for unknown ids. Remove of an
// unknown id is not an error. Scan visits documents in insertion order and stops
// early when fn returns false.
type Engine interface {
	Put(ctx context.Context, collection, id string, doc []byte) error
	Fetch(ctx context.Context, collection, id string) ([]byte, error)
	Remove(ctx context.Context, collection, id string) error
	Scan(ctx context.Context, collection string, fn func(id string, doc []byte) bool) error
	Close() error
}

// Record is the constraint satisfied by pointers to storable models.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
}

// Repository stores values of T in one collection of an Engine.
type Repository[T any, P Record[T]] struct {
	engine     Engine
	collection string
	ids        IDGenerator
}

func NewRepository[T any, P Record[T]](engine Engine, collection string, ids IDGenerator) *Repository[T, P] {
	if ids == nil {
		ids = RandomIDs{}
	}
	return &Repository[T, P]{engine: engine, collection: collection, ids: ids}
}

// Insert stores rec and returns its id. A fresh id is generated when rec has none.
func (r *Repository[T, P]) Insert(ctx context.Context, rec T) (string, error) {
	p := P(&rec)
	id := p.GetID()
	if id == "" {
		id = r.ids.NewID()
		p.SetID(id)
	}
	if err := r.put(ctx, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

// Save overwrites the record stored under rec's id.
func (r *Repository[T, P]) Save(ctx context.Context, rec T) error {
	id := P(&rec).GetID()
	if id == "" {
		return fmt.Errorf("%s: save without id", r.collection)
	}
	return r.put(ctx, id, rec)
}

func (r *Repository[T, P]) put(ctx context.Context, id string, rec T) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", r.collection, id, err)
	}
	if err := r.engine.Put(ctx, r.collection, id, doc); err != nil {
		return fmt.Errorf("%s: put %s: %w", r.collection, id, err)
	}
	return nil
}

// Get returns the record stored under id or ErrNotFound.
func (r *Repository[T, P]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	doc, err := r.engine.Fetch(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rec, ErrNotFound
		}
		return rec, fmt.Errorf("%s: fetch %s: %w", r.collection, id, err)
	}
	if err := json.Unmarshal(doc, &rec); err != nil {
		return rec, fmt.Errorf("%s: decode %s: %w", r.collection, id, err)
	}
	return rec, nil
}

// FindFirst returns the first record in scan order for which match is true.
func (r *Repository[T, P]) FindFirst(ctx context.Context, match func(T) bool) (T, error) {
	var (
		found  T
		ok     bool
		decErr error
	)
	err := r.engine.Scan(ctx, r.collection, func(id string, doc []byte) bool {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			decErr = fmt.Errorf("%s: decode %s: %w", r.collection, id, err)
			return false
		}
		if match(rec) {
			found, ok = rec, true
			return false
		}
		return true
	})
	if err != nil {
		return found, fmt.Errorf("%s: scan: %w", r.collection, err)
	}
	if decErr != nil {
		return found, decErr
	}
	if !ok {
		return found, ErrNotFound
	}
	return found, nil
}

// List returns every record in scan order. The result is never nil.
func (r *Repository[T, P]) List(ctx context.Context) ([]T, error) {
	out := []T{}
	var decErr error
	err := r.engine.Scan(ctx, r.collection, func(id string, doc []byte) bool {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			decErr = fmt.Errorf("%s: decode %s: %w", r.collection, id, err)
			return false
		}
		out = append(out, rec)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", r.collection, err)
	}
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}

// Delete removes the record stored under id. Unknown ids are not an error.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	if err := r.engine.Remove(ctx, r.collection, id); err != nil {
		return fmt.Errorf("%s: remove %s: %w", r.collection, id, err)
	}
	return nil
}
