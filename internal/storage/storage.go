package storage

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes
const (
	prefixPerft    = "perft"
	prefixAnalysis = "analysis"
)

// PerftRecord is a stored leaf count for one position and depth.
type PerftRecord struct {
	Hash     uint64        `json:"hash"`
	FEN      string        `json:"fen"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Elapsed  time.Duration `json:"elapsed"`
	Recorded time.Time     `json:"recorded"`
}

// AnalysisRecord is the result of a search from one position under one set
// of evaluation weights.
type AnalysisRecord struct {
	Hash     uint64    `json:"hash"`
	Params   uint64    `json:"params"`
	FEN      string    `json:"fen"`
	Depth    int       `json:"depth"`
	Move     string    `json:"move"`
	Score    int       `json:"score"`
	Nodes    uint64    `json:"nodes"`
	Recorded time.Time `json:"recorded"`
}

// Store wraps BadgerDB for perft baselines and cached search results
type Store struct {
	db *badger.DB
}

// Open opens the store in dir. An empty dir uses the database directory under
// the platform data directory.
func Open(dir string) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func perftKey(hash uint64, depth int) []byte {
	return fmt.Appendf(nil, "%s/%016x/%d", prefixPerft, hash, depth)
}

func analysisKey(hash, params uint64) []byte {
	return fmt.Appendf(nil, "%s/%016x/%016x", prefixAnalysis, hash, params)
}

// SavePerft stores rec under its hash and depth, replacing any earlier count.
func (s *Store) SavePerft(rec PerftRecord) error {
	if rec.Recorded.IsZero() {
		rec.Recorded = time.Now()
	}
	return s.put(perftKey(rec.Hash, rec.Depth), rec)
}

// LoadPerft returns the stored count for hash at depth.
func (s *Store) LoadPerft(hash uint64, depth int) (PerftRecord, bool, error) {
	var rec PerftRecord
	found, err := s.get(perftKey(hash, depth), &rec)
	return rec, found, err
}

// PerftDepths returns every stored perft record for hash, shallowest first.
func (s *Store) PerftDepths(hash uint64) ([]PerftRecord, error) {
	var records []PerftRecord
	prefix := fmt.Appendf(nil, "%s/%016x/", prefixPerft, hash)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec PerftRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys sort as text, so depth 10 lands before depth 2.
	slices.SortFunc(records, func(a, b PerftRecord) int { return cmp.Compare(a.Depth, b.Depth) })
	return records, nil
}

// SaveAnalysis stores rec unless a deeper search of the same position with the
// same weights is already stored.
func (s *Store) SaveAnalysis(rec AnalysisRecord) error {
	if rec.Recorded.IsZero() {
		rec.Recorded = time.Now()
	}

	key := analysisKey(rec.Hash, rec.Params)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var old AnalysisRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			}); err != nil {
				return err
			}
			if old.Depth > rec.Depth {
				return nil
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadAnalysis returns the stored search result for hash under the weights
// fingerprinted by params.
func (s *Store) LoadAnalysis(hash, params uint64) (AnalysisRecord, bool, error) {
	var rec AnalysisRecord
	found, err := s.get(analysisKey(hash, params), &rec)
	return rec, found, err
}

func (s *Store) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *Store) get(key []byte, v any) (bool, error) {
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})

	return found, err
}
