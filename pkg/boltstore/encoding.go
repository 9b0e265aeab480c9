package boltstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/crystal-mush/emberfall/pkg/places"
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
)

func init() {
	gob.Register(request.Request{})
	gob.Register(request.Comment{})
	gob.Register(world.Actor{})
	gob.Register(places.Place{})
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("boltstore: encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("boltstore: decode %T: %w", v, err)
	}
	return nil
}
