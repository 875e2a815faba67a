// Package storage persists mind map documents by map id.
//
// A [Store] holds [format.Document] envelopes, so any codec's output can be
// stored and reloaded without loss. Backends:
//
//   - [FileStore]: one JSON file per map under a directory, for the CLI
//   - [RedisStore]: keys under "mindtree:map:" plus a set index of ids
//   - [MemoryStore]: process-local, for tests and ephemeral servers
//   - [MongoStore]: one document per map, upserted by _id
//
// Every backend validates ids with [errors.ValidateMapID] and reports a
// missing map as [errors.ErrCodeNotFound].
//
// Use [Open] to pick a backend from configuration:
//
//	st, err := storage.Open(ctx, storage.Options{Backend: "file", Dir: "maps"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	doc, err := st.Get(ctx, "roadmap")
//
// [errors.ValidateMapID]: github.com/matzehuels/mindtree/pkg/errors.ValidateMapID
// [errors.ErrCodeNotFound]: github.com/matzehuels/mindtree/pkg/errors.ErrCodeNotFound
package storage

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
)

// Store persists documents by map id. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the document stored under id.
	Get(ctx context.Context, id string) (*format.Document, error)

	// Put creates or replaces the document stored under id.
	Put(ctx context.Context, id string, doc *format.Document) error

	// Delete removes id. Deleting a missing map is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored id in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string // file
	URL        string // redis, mongo
	Database   string // mongo
	Collection string // mongo
}

// Open creates the backend named by opts.Backend. An empty backend means
// file storage.
func Open(ctx context.Context, opts Options, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var (
		st  Store
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		st, err = NewFileStore(opts.Dir)
	case BackendMemory:
		st = NewMemoryStore()
	case BackendRedis:
		st, err = NewRedisStore(ctx, opts.URL)
	case BackendMongo:
		st, err = NewMongoStore(ctx, opts.URL, opts.Database, opts.Collection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened", "backend", backendName(opts.Backend))
	return st, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendFile
	}
	return b
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "map %q not found", id)
}

func checkDoc(doc *format.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if len(doc.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document has no data")
	}
	return nil
}

// wrapBackend tags a backend failure.
func wrapBackend(err error, op, id string) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "%s map %q", op, id)
}
