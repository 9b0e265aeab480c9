package boltstore

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
	bbolt "go.etcd.io/bbolt"
)

// Store wraps a bbolt database and an in-memory request cache for ACID
// persistence. Reads are served from the cache; writes go through to disk.
type Store struct {
	bolt *bbolt.DB

	mu       sync.RWMutex
	requests map[int]*request.Request
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	// Ensure all buckets exist.
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketRequests, bucketActors, bucketNotify, bucketPlaces} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Put(keyVersion, idToKey(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}

	return &Store{
		bolt:     db,
		requests: make(map[int]*request.Request),
	}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// LoadAll reads all requests from bbolt into the in-memory cache.
func (s *Store) LoadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRequests)
		return b.ForEach(func(k, v []byte) error {
			var r request.Request
			if err := decode(v, &r); err != nil {
				return fmt.Errorf("decode request #%d: %w", keyToID(k), err)
			}
			s.requests[r.ID] = &r
			count++
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("boltstore: load requests: %w", err)
	}

	log.Printf("boltstore: loaded %d requests from bolt", count)
	return nil
}

// Get returns the cached request with the given id, if present.
func (s *Store) Get(id int) (*request.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	return r, ok
}

// All returns every cached request, sorted by id.
func (s *Store) All() []*request.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*request.Request, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put persists a single request to bbolt (write-through) and updates the cache.
func (s *Store) Put(r *request.Request) error {
	data, err := encode(*r)
	if err != nil {
		return fmt.Errorf("boltstore: encode request #%d: %w", r.ID, err)
	}
	err = s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRequests).Put(idToKey(r.ID), data)
	})
	if err != nil {
		return fmt.Errorf("boltstore: put request #%d: %w", r.ID, err)
	}
	s.mu.Lock()
	s.requests[r.ID] = r
	s.mu.Unlock()
	return nil
}

// Delete removes a request from bbolt and the cache.
func (s *Store) Delete(id int) error {
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRequests).Delete(idToKey(id))
	})
	if err != nil {
		return fmt.Errorf("boltstore: delete request #%d: %w", id, err)
	}
	s.mu.Lock()
	delete(s.requests, id)
	s.mu.Unlock()
	return nil
}

// PutActor persists a single actor to bbolt (write-through).
func (s *Store) PutActor(a *world.Actor) error {
	data, err := encode(*a)
	if err != nil {
		return fmt.Errorf("boltstore: encode actor #%d: %w", a.Ref, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketActors).Put(refToKey(a.Ref), data)
	})
}

// DeleteActor removes an actor from bbolt.
func (s *Store) DeleteActor(ref world.Ref) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketActors).Delete(refToKey(ref))
	})
}

// LoadActors reads all actors from bbolt.
func (s *Store) LoadActors() ([]*world.Actor, error) {
	var actors []*world.Actor
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketActors)
		return b.ForEach(func(k, v []byte) error {
			var a world.Actor
			if err := decode(v, &a); err != nil {
				return fmt.Errorf("decode actor #%d: %w", keyToID(k), err)
			}
			actors = append(actors, &a)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load actors: %w", err)
	}
	return actors, nil
}

// Backup creates a hot snapshot of the bbolt database using tx.WriteTo().
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("boltstore: create backup %s: %w", path, err)
		}
		defer f.Close()
		_, err = tx.WriteTo(f)
		if err != nil {
			return fmt.Errorf("boltstore: write backup: %w", err)
		}
		log.Printf("boltstore: backup written to %s", path)
		return nil
	})
}

// HasData returns true if the bbolt database contains any requests.
func (s *Store) HasData() bool {
	hasData := false
	s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRequests)
		if b.Stats().KeyN > 0 {
			hasData = true
		}
		return nil
	})
	return hasData
}
