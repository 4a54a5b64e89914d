// Package library stores generated footprints in an on-disk library:
// the .kicad_mod files in .pretty directories, plus a database and a
// full-text index for lookup.
package library

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/boltdb/bolt"
	version "github.com/mcuadros/go-version"

	"github.com/xoviat/kfgen/lib/generators"
	"github.com/xoviat/kfgen/lib/kicadmod"
)

func Exists(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	} else if os.IsNotExist(err) {
		return false
	}

	return true
}

/*
	return an encoded object as bytes
*/
func Marshal(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	err := gob.NewEncoder(b).Encode(v)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

/*
	return a decoded object from bytes
*/
func Unmarshal(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	return gob.NewDecoder(b).Decode(v)
}

// Record is the stored metadata of one footprint.
type Record struct {
	Name             string
	Library          string
	Description      string
	Tags             string
	PadCount         int
	GeneratedAt      time.Time
	Generator        string
	GeneratorVersion string
}

type Library struct {
	root   string
	output string
	db     *bolt.DB
	index  bleve.Index
}

/*
	Create or open a library rooted at a directory
*/
func Open(root string) (*Library, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(root, "kfgen.db"), 0666, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte("footprints")); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte("unindexed"))
		return err
	})
	if err != nil {
		return nil, err
	}

	var index bleve.Index
	ipath := filepath.Join(root, "kfgen.index")
	if Exists(ipath) {
		index, err = bleve.Open(ipath)
	} else {
		index, err = bleve.New(ipath, bleve.NewIndexMapping())
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Library{
		root:  root,
		db:    db,
		index: index,
	}, nil
}

func (l *Library) Close() error {
	if err := l.index.Close(); err != nil {
		l.db.Close()
		return err
	}
	return l.db.Close()
}

// Root returns the library directory.
func (l *Library) Root() string {
	return l.root
}

// SetOutput redirects the .pretty directories written by Store to a
// different directory than the library root.
func (l *Library) SetOutput(dir string) {
	l.output = dir
}

func (l *Library) outputDir() string {
	if l.output != "" {
		return l.output
	}
	return l.root
}

/*
	Store writes the footprint files into their .pretty directories and
	records them in the database. An existing record produced by a newer
	generator version is kept and the incoming footprint skipped.
*/
func (l *Library) Store(results []*generators.Result, generatorName, generatorVersion string) (int, error) {
	stored := 0
	for _, r := range results {
		existing, err := l.Get(r.Name)
		if err != nil {
			return stored, err
		}
		if existing != nil && version.CompareSimple(existing.GeneratorVersion, generatorVersion) > 0 {
			continue
		}

		dir := filepath.Join(l.outputDir(), r.Library+".pretty")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return stored, err
		}
		path := filepath.Join(dir, r.Name+".kicad_mod")
		if err := kicadmod.WriteFile(r.Footprint, path); err != nil {
			return stored, err
		}

		rec := &Record{
			Name:             r.Name,
			Library:          r.Library,
			Description:      r.Footprint.Descr,
			Tags:             r.Footprint.Tags,
			PadCount:         len(r.Footprint.Pads()),
			GeneratedAt:      time.Now(),
			Generator:        generatorName,
			GeneratorVersion: generatorVersion,
		}
		if err := l.put(rec); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

/*
	Register records a footprint that already exists on disk, without
	rewriting its file. Externally produced footprints get indexed this
	way.
*/
func (l *Library) Register(rec *Record) error {
	existing, err := l.Get(rec.Name)
	if err != nil {
		return err
	}
	if existing != nil && version.CompareSimple(existing.GeneratorVersion, rec.GeneratorVersion) > 0 {
		return nil
	}
	return l.put(rec)
}

func (l *Library) put(rec *Record) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		data, err := Marshal(*rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte("footprints")).Put([]byte(rec.Name), data); err != nil {
			return err
		}
		/*
			names are removed from unindexed once they are indexed
		*/
		return tx.Bucket([]byte("unindexed")).Put([]byte(rec.Name), []byte(""))
	})
}

// Get returns the stored record for a footprint name, or nil.
func (l *Library) Get(name string) (*Record, error) {
	var rec *Record
	err := l.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte("footprints")).Get([]byte(name))
		if data == nil {
			return nil
		}
		rec = &Record{}
		return Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every stored record, ordered by name.
func (l *Library) All() ([]*Record, error) {
	var records []*Record
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("footprints")).ForEach(func(k, v []byte) error {
			rec := &Record{}
			if err := Unmarshal(v, rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

/*
	IndexPending feeds records written since the last run into the
	full-text index.
*/
func (l *Library) IndexPending() (int, error) {
	var names []string
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("unindexed")).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, name := range names {
		rec, err := l.Get(name)
		if err != nil {
			return indexed, err
		}
		if rec == nil {
			continue
		}
		if err := l.index.Index(rec.Name, *rec); err != nil {
			return indexed, err
		}
		if err := l.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte("unindexed")).Delete([]byte(name))
		}); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}

/*
	Find footprints matching a search string
*/
func (l *Library) Find(text string) ([]*Record, error) {
	query := bleve.NewQueryStringQuery(text)
	req := bleve.NewSearchRequest(query)
	req.Size = 50

	result, err := l.index.Search(req)
	if err != nil {
		return nil, err
	}

	records := []*Record{}
	for _, hit := range result.Hits {
		rec, err := l.Get(hit.ID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Libraries lists the distinct .pretty library names present.
func (l *Library) Libraries() ([]string, error) {
	records, err := l.All()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, rec := range records {
		if !seen[rec.Library] {
			seen[rec.Library] = true
			names = append(names, rec.Library)
		}
	}
	return names, nil
}

// FootprintPath returns the on-disk path of a stored footprint.
func (l *Library) FootprintPath(rec *Record) string {
	return filepath.Join(l.outputDir(), rec.Library+".pretty", rec.Name+".kicad_mod")
}

// ParseName splits a "Library:Footprint" reference; the library part
// may be empty.
func ParseName(ref string) (lib, name string) {
	if i := strings.Index(ref, ":"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

// ErrNotFound reports a missing footprint by name.
func ErrNotFound(name string) error {
	return fmt.Errorf("footprint %q not found", name)
}
