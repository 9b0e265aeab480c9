package boltstore

import (
	"bytes"
	"fmt"

	"github.com/crystal-mush/emberfall/pkg/world"
	bbolt "go.etcd.io/bbolt"
)

// AppendNotification stores an offline notification line for an actor.
// Lines are keyed "actorRef:seq" so a prefix scan yields them in append order.
func (s *Store) AppendNotification(actor world.Ref, line string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNotify)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: notify sequence: %w", err)
		}
		return b.Put(notifyKey(actor, seq), []byte(line))
	})
}

// PendingNotifications returns all stored notification lines for an actor,
// oldest first.
func (s *Store) PendingNotifications(actor world.Ref) ([]string, error) {
	var lines []string
	prefix := notifyPrefix(actor)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketNotify).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			lines = append(lines, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load notifications for #%d: %w", actor, err)
	}
	return lines, nil
}

// ClearNotifications deletes all stored notification lines for an actor.
func (s *Store) ClearNotifications(actor world.Ref) error {
	prefix := notifyPrefix(actor)
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNotify)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
