// Package docstore is a small document database: named collections of JSON
// documents keyed by id, with ordered listing, partial updates and change
// subscriptions. Badger and SQLite backends share one implementation.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// IDField is the JSON key every stored document carries its id under.
const IDField = "id"

// Store reads and writes documents.
type Store interface {
	// Create stores data under a new random id and returns the id.
	Create(ctx context.Context, collection string, data any) (string, error)
	// Set creates or replaces the document at id.
	Set(ctx context.Context, collection, id string, data any) error
	// Get decodes the document at id into out. Returns ErrNotFound when missing.
	Get(ctx context.Context, collection, id string, out any) error
	// List returns every document in the collection.
	List(ctx context.Context, collection string, opts ...ListOption) ([]Document, error)
	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Subscribe delivers a Change after every write to the collection until
	// ctx is done. Notifications coalesce when the reader falls behind, so a
	// Change means "reload", not a complete log.
	Subscribe(ctx context.Context, collection string) (<-chan Change, error)
	Close() error
}

// Document is a stored JSON document.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into out.
func (d Document) Decode(out any) error {
	if err := json.Unmarshal(d.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	return nil
}

// backend is the raw key-value layer under docStore.
type backend interface {
	name() string
	get(ctx context.Context, collection, id string) ([]byte, error)
	put(ctx context.Context, collection, id string, body []byte) error
	// modify runs fn on the current body inside one transaction and stores
	// the result. Returns ErrNotFound when the document is missing.
	modify(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error
	del(ctx context.Context, collection, id string) (bool, error)
	scan(ctx context.Context, collection string) ([]Document, error)
	close() error
}

type docStore struct {
	be     backend
	broker *broker
	log    logger.Logger
}

func newDocStore(be backend, log logger.Logger) *docStore {
	return &docStore{be: be, broker: newBroker(), log: log}
}

func checkKey(collection, id string) error {
	if collection == "" || strings.Contains(collection, "/") || strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q/%q", ErrInvalidKey, collection, id)
	}
	return nil
}

// track starts timing op; the returned func records it with the final error.
func (s *docStore) track(op string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		err := *errp
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		metrics.RecordStoreOp(s.be.name(), op, time.Since(start), err)
	}
}

func (s *docStore) Create(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, "create", collection, id, data, ChangeCreated); err != nil {
		return "", err
	}
	return id, nil
}

func (s *docStore) Set(ctx context.Context, collection, id string, data any) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidKey)
	}
	return s.write(ctx, "set", collection, id, data, ChangeUpdated)
}

func (s *docStore) write(ctx context.Context, op, collection, id string, data any, kind ChangeKind) (err error) {
	defer s.track(op)(&err)
	if err = checkKey(collection, id); err != nil {
		return err
	}
	body, err := encode(data, id)
	if err != nil {
		return err
	}
	if err = s.be.put(ctx, collection, id, body); err != nil {
		return fmt.Errorf("%s %s/%s: %w", op, collection, id, err)
	}
	s.broker.publish(Change{Collection: collection, ID: id, Kind: kind})
	return nil
}

func (s *docStore) Get(ctx context.Context, collection, id string, out any) (err error) {
	defer s.track("get")(&err)
	if err = checkKey(collection, id); err != nil {
		return err
	}
	body, err := s.be.get(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Data: body}.Decode(out)
}

func (s *docStore) List(ctx context.Context, collection string, opts ...ListOption) (docs []Document, err error) {
	defer s.track("list")(&err)
	if err = checkKey(collection, ""); err != nil {
		return nil, err
	}
	docs, err = s.be.scan(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return applyListOptions(docs, opts)
}

func (s *docStore) Update(ctx context.Context, collection, id string, fields map[string]any) (err error) {
	defer s.track("update")(&err)
	if err = checkKey(collection, id); err != nil {
		return err
	}
	patch := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if k == IDField {
			continue
		}
		raw, merr := json.Marshal(v)
		if merr != nil {
			return fmt.Errorf("update %s/%s: field %s: %w", collection, id, k, merr)
		}
		patch[k] = raw
	}
	err = s.be.modify(ctx, collection, id, func(cur []byte) ([]byte, error) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
		}
		for k, v := range patch {
			obj[k] = v
		}
		return json.Marshal(obj)
	})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	s.broker.publish(Change{Collection: collection, ID: id, Kind: ChangeUpdated})
	return nil
}

func (s *docStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer s.track("delete")(&err)
	if err = checkKey(collection, id); err != nil {
		return err
	}
	existed, err := s.be.del(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if existed {
		s.broker.publish(Change{Collection: collection, ID: id, Kind: ChangeDeleted})
	}
	return nil
}

func (s *docStore) Subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	if err := checkKey(collection, ""); err != nil {
		return nil, err
	}
	return s.broker.subscribe(ctx, collection)
}

func (s *docStore) Close() error {
	s.broker.close()
	if err := s.be.close(); err != nil {
		return fmt.Errorf("close %s store: %w", s.be.name(), err)
	}
	s.log.Info(context.Background(), "document store closed", logger.String("backend", s.be.name()))
	return nil
}

// encode marshals data into a JSON object carrying id.
func encode(data any, id string) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", id, err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, id)
	}
	idRaw, _ := json.Marshal(id)
	obj[IDField] = idRaw
	return json.Marshal(obj)
}

// GetAs reads one document as T.
func GetAs[T any](ctx context.Context, s Store, collection, id string) (T, error) {
	var out T
	err := s.Get(ctx, collection, id, &out)
	return out, err
}

// ListAs lists a collection decoded as T.
func ListAs[T any](ctx context.Context, s Store, collection string, opts ...ListOption) ([]T, error) {
	docs, err := s.List(ctx, collection, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
