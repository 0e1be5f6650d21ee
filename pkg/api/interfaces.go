package api

import (
	"github.com/ssargent/isulog/pkg/catalog"
	"github.com/ssargent/isulog/pkg/isulog"
)

// ICatalog defines the log catalogue operations the API serves
type ICatalog interface {
	// Put validates and stores an uninstall log
	Put(name string, raw []byte) (catalog.Entry, error)

	// Get returns the entry for id
	Get(id string) (catalog.Entry, error)

	// Raw returns the stored bytes for id
	Raw(id string) ([]byte, error)

	// Log loads the stored log for id
	Log(id string) (*isulog.Log, error)

	// List returns all entries
	List() ([]catalog.Entry, error)

	// Delete removes the log for id
	Delete(id string) error
}

var _ ICatalog = (*catalog.Catalog)(nil)
