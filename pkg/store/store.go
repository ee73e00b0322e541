// Package store persists laid-out outlines so they can be reopened,
// re-rendered and listed later.
//
// A [Document] holds everything needed to reproduce a chart: the sorted
// outline items, the layout config and style table, the orphan policy and
// the computed geometry. Backends implement [Store]:
//
//   - [MemoryStore]: in-process, for tests and single-run servers
//   - [FileStore]: one JSON file per document, for the CLI
//   - [SQLiteStore]: a single SQLite database file
//   - [MongoStore]: MongoDB, for shared server deployments
//
// [Open] picks a backend from a URI:
//
//	s, err := store.Open(ctx, "sqlite:///var/lib/wbsgen/docs.db")
//	doc := &store.Document{Name: "plan", Items: items, Geometry: geoms}
//	err = s.Save(ctx, doc)   // assigns doc.ID
//	doc, err = s.Get(ctx, doc.ID)
package store

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// Document is a stored, laid-out outline.
type Document struct {
	ID        string               `json:"id" bson:"_id"`
	Name      string               `json:"name" bson:"name"`
	Source    string               `json:"source,omitempty" bson:"source,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	Config    layout.Config        `json:"config" bson:"config"`
	Styles    style.Table          `json:"styles" bson:"styles"`
	Orphans   outline.OrphanPolicy `json:"orphans" bson:"orphans"`
	Items     []outline.Item       `json:"items" bson:"items"`
	Geometry  []layout.Geometry    `json:"geometry" bson:"geometry"`
	Overflow  layout.Overflow      `json:"overflow" bson:"overflow"`
}

// Summary is the listing view of a document.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Items     int       `json:"items" bson:"item_count"`
}

// Summarize returns the listing view of d.
func (d *Document) Summarize() Summary {
	return Summary{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, Items: len(d.Items)}
}

// Forest rebuilds the outline tree and re-attaches the stored geometry to
// its nodes.
func (d *Document) Forest() (outline.Forest, []layout.Geometry, error) {
	forest, _, err := outline.Build(d.Items, outline.WithOrphanPolicy(d.Orphans))
	if err != nil {
		return nil, nil, err
	}
	geoms, err := layout.Relink(forest, d.Geometry)
	if err != nil {
		return nil, nil, err
	}
	return forest, geoms, nil
}

// Store is the interface for document storage backends.
type Store interface {
	// Save inserts or replaces a document. An empty ID is assigned a new
	// UUID and a zero CreatedAt is set to now; both are written back to doc.
	Save(ctx context.Context, doc *Document) error

	// Get returns the document with id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete removes a document. Deleting a missing id returns NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all documents, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

// prepare assigns the ID and creation time of a new document.
func prepare(doc *Document, now func() time.Time) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if err := ValidateID(doc.ID); err != nil {
		return err
	}
	if err := errors.ValidateName(doc.Name); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now().UTC().Truncate(time.Millisecond)
	}
	return nil
}

// ValidateID checks that id is a UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid document id: %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "document %s not found", id)
}

// Open connects to the backend named by uri:
//
//	memory:                      MemoryStore
//	file:///path/to/dir          FileStore
//	sqlite:///path/to/file.db    SQLiteStore
//	mongodb://host/db            MongoStore (database defaults to "wbsgen")
//
// An empty uri opens a MemoryStore.
func Open(ctx context.Context, uri string) (Store, error) {
	if uri == "" || uri == "memory:" || uri == "memory" {
		return NewMemoryStore(), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse store uri")
	}
	switch u.Scheme {
	case "file":
		return NewFileStore(pathOf(u))
	case "sqlite", "sqlite3":
		return NewSQLiteStore(ctx, pathOf(u))
	case "mongodb", "mongodb+srv":
		db := strings.Trim(u.Path, "/")
		if db == "" {
			db = DefaultMongoDatabase
		}
		return NewMongoStore(ctx, uri, db)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported store scheme: %q", u.Scheme)
	}
}

// pathOf returns the filesystem path of a file: or sqlite: URI, accepting
// both "scheme:///abs/path" and "scheme:rel/path".
func pathOf(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}
