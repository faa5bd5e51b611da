// Package cache persists analysis results between runs. Analysis dominates
// wall-clock time on large histories while re-renders with different visual
// parameters are common, so results are cached keyed by the repository HEAD.
// The cache is strictly best-effort: failures degrade to a fresh analysis.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fschutt/git-radio/internal/model"
)

const bucketName = "analysis"

// schemaVersion is part of every key; bump it when the gob layout of the
// model types changes so stale encodings miss instead of failing to decode.
const schemaVersion = 1

// Store is a bbolt-backed cache of gob-encoded analysis results.
type Store struct {
	path string
}

// New places the cache database under dir. Nothing is opened until the
// first Get or Put.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, "analysis.db")}
}

func cacheKey(head string) []byte {
	return []byte(fmt.Sprintf("v%d/%s", schemaVersion, head))
}

// Get returns the cached result for a HEAD SHA, or (nil, nil) on a miss or
// when no cache database exists yet.
func (s *Store) Get(head string) (*model.AnalysisResult, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer db.Close()

	var result *model.AnalysisResult
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		raw := bucket.Get(cacheKey(head))
		if raw == nil {
			return nil
		}
		var decoded model.AnalysisResult
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&decoded); err != nil {
			return fmt.Errorf("decode cached analysis: %w", err)
		}
		result = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Put stores a result under the HEAD SHA it was computed from.
func (s *Store) Put(head string, result *model.AnalysisResult) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(result); err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put(cacheKey(head), buf.Bytes())
	})
}
