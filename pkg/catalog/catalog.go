// Package catalog stores uninstall logs in a pebble database keyed by KSUID.
//
// Each log is kept as its raw bytes plus a JSON Entry describing it:
//
//	raw/<ksuid>   original log bytes
//	meta/<ksuid>  Entry
//
// KSUIDs sort by creation time, so List returns logs in upload order.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/isulog/pkg/isulog"
)

var (
	// ErrNotFound is returned when no log has the requested ID
	ErrNotFound = errors.New("log not found")

	// ErrInvalidID is returned for IDs that are not KSUIDs
	ErrInvalidID = errors.New("invalid log id")
)

var (
	rawPrefix  = []byte("raw/")
	metaPrefix = []byte("meta/")
)

// Entry describes one stored log
type Entry struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Size      int            `json:"size" yaml:"size"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Summary   isulog.Summary `json:"summary" yaml:"summary"`
}

// Options configure Open
type Options struct {
	FS           vfs.FS // nil uses the OS filesystem
	Logger       *slog.Logger
	SkipCRCCheck bool
}

// Catalog is a pebble-backed store of uninstall logs. It is safe for concurrent use.
type Catalog struct {
	db      *pebble.DB
	logger  *slog.Logger
	skipCRC bool
}

// Open opens or creates the catalogue in dir
func Open(dir string, opts Options) (*Catalog, error) {
	pebbleOpts := &pebble.Options{}
	if opts.FS != nil {
		pebbleOpts.FS = opts.FS
	}

	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", dir, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Catalog{db: db, logger: logger, skipCRC: opts.SkipCRCCheck}, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	k := append([]byte(nil), prefix...)
	return append(k, id.String()...)
}

func parseID(id string) (ksuid.KSUID, error) {
	k, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return k, nil
}

// Put validates raw as an uninstall log and stores it
func (c *Catalog) Put(name string, raw []byte) (Entry, error) {
	lg, err := isulog.LoadWithOptions(bytes.NewReader(raw), isulog.LoadOptions{
		SkipCRCCheck: c.skipCRC,
		Logger:       c.logger,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("invalid uninstall log: %w", err)
	}

	id := ksuid.New()
	entry := Entry{
		ID:        id.String(),
		Name:      name,
		Size:      len(raw),
		CreatedAt: id.Time().UTC(),
		Summary:   lg.Summary(),
	}

	meta, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode entry: %w", err)
	}

	batch := c.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key(rawPrefix, id), raw, nil); err != nil {
		return Entry{}, err
	}
	if err := batch.Set(key(metaPrefix, id), meta, nil); err != nil {
		return Entry{}, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return Entry{}, fmt.Errorf("failed to store log: %w", err)
	}

	c.logger.Info("log stored", "id", entry.ID, "app_id", entry.Summary.AppID, "records", entry.Summary.Records)
	return entry, nil
}

// get returns a copy of the value at k
func (c *Catalog) get(k []byte) ([]byte, error) {
	data, closer, err := c.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

// Get returns the entry for id
func (c *Catalog) Get(id string) (Entry, error) {
	k, err := parseID(id)
	if err != nil {
		return Entry{}, err
	}

	meta, err := c.get(key(metaPrefix, k))
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(meta, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}
	return entry, nil
}

// Raw returns the stored bytes of the log
func (c *Catalog) Raw(id string) ([]byte, error) {
	k, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return c.get(key(rawPrefix, k))
}

// Log loads the stored log
func (c *Catalog) Log(id string) (*isulog.Log, error) {
	raw, err := c.Raw(id)
	if err != nil {
		return nil, err
	}
	return isulog.LoadWithOptions(bytes.NewReader(raw), isulog.LoadOptions{
		SkipCRCCheck: c.skipCRC,
		Logger:       c.logger,
	})
}

// List returns all entries, oldest first
func (c *Catalog) List() ([]Entry, error) {
	upper := append([]byte(nil), metaPrefix...)
	upper[len(upper)-1]++

	it, err := c.db.NewIter(&pebble.IterOptions{LowerBound: metaPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	entries := []Entry{}
	for it.First(); it.Valid(); it.Next() {
		var entry Entry
		if err := json.Unmarshal(it.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", it.Key(), err)
		}
		entries = append(entries, entry)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a stored log
func (c *Catalog) Delete(id string) error {
	k, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := c.get(key(metaPrefix, k)); err != nil {
		return err
	}

	batch := c.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(key(rawPrefix, k), nil); err != nil {
		return err
	}
	if err := batch.Delete(key(metaPrefix, k), nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}

	c.logger.Info("log deleted", "id", id)
	return nil
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	return c.db.Close()
}
