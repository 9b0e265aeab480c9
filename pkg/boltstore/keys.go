package boltstore

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// Bucket name constants for bbolt storage.
var (
	bucketMeta     = []byte("meta")
	bucketRequests = []byte("requests")
	bucketActors   = []byte("actors")
	bucketNotify   = []byte("notify")
	bucketPlaces   = []byte("places")
)

// Meta key constants.
var (
	keyVersion = []byte("version")
)

// schemaVersion marks the on-disk layout for future migrations.
const schemaVersion = 1

// idToKey converts a request id to an 8-byte big-endian key so ids sort
// numerically under a cursor.
func idToKey(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

// keyToID converts an 8-byte big-endian key back to an int.
func keyToID(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}

// refToKey converts an actor ref to an 8-byte big-endian key.
func refToKey(ref world.Ref) []byte {
	return idToKey(int(ref))
}

// notifyKey returns the "actorRef:seq" key for an offline notification.
// The zero-padded sequence preserves append order under a prefix scan.
func notifyKey(actor world.Ref, seq uint64) []byte {
	return []byte(fmt.Sprintf("%d:%020d", actor, seq))
}

// notifyPrefix returns the key prefix for one actor's notification queue.
func notifyPrefix(actor world.Ref) []byte {
	return []byte(fmt.Sprintf("%d:", actor))
}

// placeKey returns the "roomRef:placeKey" key for place storage.
func placeKey(room world.Ref, key string) []byte {
	return []byte(fmt.Sprintf("%d:%s", room, strings.ToLower(key)))
}
