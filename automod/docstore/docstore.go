package docstore

import (
	"context"
)

// Storage for a single serialized document, rewritten wholesale on every save.
//
// The ledger and the group registry both keep their whole state as one JSON document; a DocStore is where that document lives.
type DocStore interface {
	// Returns the current document, or nil (with no error) if nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}
