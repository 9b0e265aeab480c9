package boltstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/places"
	"github.com/crystal-mush/emberfall/pkg/world"
	bbolt "go.etcd.io/bbolt"
)

// PutPlace persists a place to bbolt, keyed "roomRef:placeKey".
func (s *Store) PutPlace(room world.Ref, p *places.Place) error {
	data, err := encode(*p)
	if err != nil {
		return fmt.Errorf("boltstore: encode place %q: %w", p.Key, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlaces).Put(placeKey(room, p.Key), data)
	})
}

// DeletePlace removes a place from bbolt.
func (s *Store) DeletePlace(room world.Ref, key string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlaces).Delete(placeKey(room, key))
	})
}

// LoadPlaces reads all places from bbolt, grouped by room.
func (s *Store) LoadPlaces() (map[world.Ref]map[string]*places.Place, error) {
	result := make(map[world.Ref]map[string]*places.Place)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPlaces)
		return b.ForEach(func(k, v []byte) error {
			var p places.Place
			if err := decode(v, &p); err != nil {
				return fmt.Errorf("decode place %q: %w", string(k), err)
			}
			// Parse key "roomRef:placeKey"
			parts := strings.SplitN(string(k), ":", 2)
			if len(parts) != 2 {
				return nil
			}
			ref, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil
			}
			room := world.Ref(ref)
			if result[room] == nil {
				result[room] = make(map[string]*places.Place)
			}
			result[room][p.Key] = &p
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load places: %w", err)
	}
	return result, nil
}
