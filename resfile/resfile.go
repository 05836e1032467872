// Package resfile stores converted assets in a bbolt resource file, one key
// per entity in the "builds" and "anims" buckets.
package resfile

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	buildsBucket = []byte("builds")
	animsBucket  = []byte("anims")
)

// File is an open resource file.
type File struct {
	db *bolt.DB
}

// Open opens or creates the resource file at path.
func Open(path string) (*File, error) {
	db, err := bolt.Open(path, 0o666, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening resource file %s", path)
	}
	return &File{db: db}, nil
}

// Close closes the underlying database.
func (f *File) Close() error {
	return f.db.Close()
}

// Put stores an entity's BILD and ANIM streams in one transaction,
// replacing earlier versions.
func (f *File) Put(entity string, build, anim []byte) error {
	err := f.db.Update(func(tx *bolt.Tx) error {
		for _, kv := range []struct {
			bucket []byte
			data   []byte
		}{
			{buildsBucket, build},
			{animsBucket, anim},
		} {
			buck, err := tx.CreateBucketIfNotExists(kv.bucket)
			if err != nil {
				return err
			}
			if err := buck.Put([]byte(entity), kv.data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "storing %s", entity)
	}
	glog.V(1).Infof("resfile: stored %s (%d + %d bytes)", entity, len(build), len(anim))
	return nil
}

// Get returns copies of an entity's streams. ok is false if the entity was
// never stored.
func (f *File) Get(entity string) (build, anim []byte, ok bool, err error) {
	err = f.db.View(func(tx *bolt.Tx) error {
		bb, ab := tx.Bucket(buildsBucket), tx.Bucket(animsBucket)
		if bb == nil || ab == nil {
			return nil
		}
		b, a := bb.Get([]byte(entity)), ab.Get([]byte(entity))
		if b == nil || a == nil {
			return nil
		}
		build = append([]byte(nil), b...)
		anim = append([]byte(nil), a...)
		ok = true
		return nil
	})
	return build, anim, ok, errors.Wrapf(err, "reading %s", entity)
}

// Entities lists the stored entity names in key order.
func (f *File) Entities() ([]string, error) {
	var names []string
	err := f.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket(buildsBucket)
		if buck == nil {
			return nil
		}
		return buck.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, errors.Wrap(err, "listing entities")
}
