// Package storage provides the read-only artifact bundle for the salary dashboard.
// It uses BoltDB as the underlying storage engine to keep the player table, the
// season statistics and both model artifacts in one file, each blob stored with its
// SHA-256 checksum.
//
// The dashboard opens bundles read-only; only the packing tool writes them.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	artifactsBucket = "artifacts" // Bucket name for artifact blobs
	checksumsBucket = "checksums" // Bucket name for hex SHA-256 of each blob
	metaBucket      = "meta"      // Bucket name for bundle metadata
)

const packedAtKey = "packed_at"

// Artifact names stored in a bundle.
const (
	PlayersArtifact       = "players.csv"
	SeasonStatsArtifact   = "season_stats.csv"
	SalaryModelArtifact   = "salary_model.json"
	NeighborModelArtifact = "neighbor_model.json"
)

var (
	// ErrArtifactNotFound is returned when a bundle has no blob under the requested name.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrChecksumMismatch is returned when a blob does not match its recorded checksum.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
)

// Store is an open artifact bundle.
type Store struct {
	db   *bbolt.DB // BoltDB database instance
	path string
}

// Open opens the bundle at path read-only. The file must exist and contain the
// bundle buckets.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o400, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}

	err = db.View(func(tx *bbolt.Tx) error {
		for _, name := range []string{artifactsBucket, checksumsBucket, metaBucket} {
			if tx.Bucket([]byte(name)) == nil {
				return fmt.Errorf("bundle %s: missing %s bucket", path, name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the bundle file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the named blob after verifying its checksum.
func (s *Store) Get(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(artifactsBucket)).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		want := tx.Bucket([]byte(checksumsBucket)).Get([]byte(name))
		if got := checksum(v); string(want) != got {
			return fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Names lists the stored artifacts in key order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(artifactsBucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// PackedAt returns the time the bundle was written.
func (s *Store) PackedAt() (time.Time, error) {
	var packedAt time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(metaBucket)).Get([]byte(packedAtKey))
		if v == nil {
			return fmt.Errorf("bundle %s: no %s", s.path, packedAtKey)
		}
		return packedAt.UnmarshalText(v)
	})
	return packedAt, err
}

// Pack writes a new bundle at path holding artifacts, replacing any existing file.
func Pack(path string, artifacts map[string][]byte, packedAt time.Time) error {
	if len(artifacts) == 0 {
		return errors.New("no artifacts to pack")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old bundle: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer db.Close()

	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	return db.Update(func(tx *bbolt.Tx) error {
		blobs, err := tx.CreateBucket([]byte(artifactsBucket))
		if err != nil {
			return fmt.Errorf("create artifacts bucket: %w", err)
		}
		sums, err := tx.CreateBucket([]byte(checksumsBucket))
		if err != nil {
			return fmt.Errorf("create checksums bucket: %w", err)
		}
		meta, err := tx.CreateBucket([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}

		for _, name := range names {
			data := artifacts[name]
			if err := blobs.Put([]byte(name), data); err != nil {
				return fmt.Errorf("put %s: %w", name, err)
			}
			if err := sums.Put([]byte(name), []byte(checksum(data))); err != nil {
				return fmt.Errorf("put %s checksum: %w", name, err)
			}
		}

		ts, err := packedAt.UTC().MarshalText()
		if err != nil {
			return err
		}
		return meta.Put([]byte(packedAtKey), ts)
	})
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
