// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
)

// RecordRepository implements storage.RecordRepository for BadgerDB.
type RecordRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) (*RecordRepository, error) {
	idSeq, err := backend.GetSequence(recordIDSeq)
	if err != nil {
		return nil, err
	}

	return &RecordRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RecordRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *RecordRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *RecordRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddRecords stores records, replacing any earlier record with the same URL.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, record := range records {
			if err := r.assignID(record); err != nil {
				return err
			}

			key := makeRecordKey(record.Id)
			old, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := tx.Delete(makeRecordDateKey(old.PublishedAt, old.Id)); err != nil {
					return err
				}
				if record.InsertedAt.IsZero() {
					record.InsertedAt = old.InsertedAt
				}
			}
			if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			if err := writeRecord(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// assignID derives the record ID from its URL, or draws one from the
// sequence when there is no URL and no ID yet.
func (r *RecordRepository) assignID(record *core.Record) error {
	if record.URL != "" {
		record.Id = core.IDFromContent(record.URL)
		return nil
	}
	if record.Id != 0 {
		return nil
	}
	nextID, err := r.idSeq.Next()
	if err != nil {
		return err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		if nextID, err = r.idSeq.Next(); err != nil {
			return err
		}
	}
	record.Id = core.ID(nextID)
	return nil
}

// UpdateRecords updates existing records.
func (r *RecordRepository) UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeRecordKey(record.Id)

			old, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: record %d", storage.ErrNotFound, record.Id)
			}

			record.UpdatedAt = time.Now().UTC()

			if !old.PublishedAt.Equal(record.PublishedAt) {
				if err := tx.Delete(makeRecordDateKey(old.PublishedAt, old.Id)); err != nil {
					return err
				}
			}
			if err := writeRecord(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteRecords removes records by their IDs.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)

			record, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("%w: record %d", storage.ErrNotFound, id)
			}

			if err := tx.Delete(makeRecordDateKey(record.PublishedAt, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	var result *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: record %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple records by their IDs.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	var result []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetRecordsByPublishedRange retrieves records published within [start, end).
func (r *RecordRepository) GetRecordsByPublishedRange(ctx context.Context, start, end time.Time) ([]*core.Record, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialRecordDateKey(start)
		endKey := makePartialRecordDateKey(end)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordDatePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if bytes.Compare(iter.Item().Key(), endKey) >= 0 {
				break
			}
			record, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentRecords retrieves the most recently published records, newest first.
func (r *RecordRepository) GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error) {
	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(recordDatePrefix)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration seeks to the last key <= startKey.
		startKey := append([]byte(recordDatePrefix), bytes.Repeat([]byte{0xff}, 16)...)

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			record, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// FindLexical scores every record by how many distinct terms its
// comparison text contains. Terms are matched case-insensitively.
func (r *RecordRepository) FindLexical(ctx context.Context, terms []string, limit int) ([]*storage.LexicalHit, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}
	terms = lexicalTerms(terms)
	hits := []*storage.LexicalHit{}
	if len(terms) == 0 {
		return hits, nil
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanRecords(ctx, tx, func(record *core.Record) error {
			if n := core.CountContained(record.ComparisonText(), terms); n > 0 {
				hits = append(hits, &storage.LexicalHit{Record: record, Score: n})
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(hits, func(a, b *storage.LexicalHit) int {
		return b.Score - a.Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func lexicalTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && !slices.Contains(out, term) {
			out = append(out, term)
		}
	}
	return out
}

// errStopBatch ends a page read once the batch is full.
var errStopBatch = errors.New("batch full")

// ForEachRecord pages through all records in ID order. Each page is read in
// its own transaction, so fn may write records.
func (r *RecordRepository) ForEachRecord(ctx context.Context, batchSize int, fn func(records []*core.Record) error) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", storage.ErrInvalidQuery, batchSize)
	}

	var after []byte
	for {
		batch := make([]*core.Record, 0, batchSize)
		var last []byte
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(recordPrefix)
			iter := tx.NewIterator(opts)
			defer iter.Close()

			if after == nil {
				iter.Rewind()
			} else {
				iter.Seek(after)
				if iter.Valid() && bytes.Equal(iter.Item().Key(), after) {
					iter.Next()
				}
			}
			for ; iter.Valid(); iter.Next() {
				if len(batch) == batchSize {
					return errStopBatch
				}
				item := iter.Item()
				var record *core.Record
				if err := item.Value(func(val []byte) error {
					var err error
					record, err = storage.UnmarshalRecord(val)
					return err
				}); err != nil {
					return err
				}
				batch = append(batch, record)
				last = item.KeyCopy(nil)
			}
			return nil
		}, false)
		if err != nil && !errors.Is(err, errStopBatch) {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = last
	}
}

// Helper methods

// readIndexed follows a date index entry to its record.
func (r *RecordRepository) readIndexed(tx *badger.Txn, item *badger.Item) (*core.Record, error) {
	var recordID core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		recordID, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readRecord(tx, makeRecordKey(recordID))
}

// readRecord reads a record from the transaction. Returns nil, nil if absent.
func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}

// writeRecord stores the record and its date index entry.
func writeRecord(tx *badger.Txn, record *core.Record) error {
	if err := tx.Set(makeRecordKey(record.Id), storage.MarshalRecord(record)); err != nil {
		return err
	}
	return tx.Set(makeRecordDateKey(record.PublishedAt, record.Id), storage.MarshalID(record.Id))
}
