package request

// Store is the persistence boundary for requests. The bolt store implements
// it write-through; tests use an in-memory fake.
type Store interface {
	// Get returns the request with the given id.
	Get(id int) (*Request, bool)
	// All returns every persisted request, ordered by id.
	All() []*Request
	// Put persists the request's current state.
	Put(r *Request) error
	// Delete removes the request permanently.
	Delete(id int) error
}
