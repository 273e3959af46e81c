// Package boltstore is a reference Store implementation backed by
// go.etcd.io/bbolt, the teacher's own KV engine (go.mod requires
// go.etcd.io/bbolt directly). Bucket layout mirrors
// beacon-chain/db/schema.go's "suffix + key" convention, read in full
// before writing this file.
//
// Block and state values are encoded with encoding/gob rather than SSZ:
// spec.md §1 treats SSZ encoding as a pure-function external collaborator
// this module does not reimplement, and this module's types are plain Go
// structs rather than the teacher's protobuf-generated containers fastssz
// normally generates MarshalSSZ for. Tree-hash roots (the values Store
// actually keys state by, per invariant 2) still go through the ssz
// package; only the at-rest byte encoding here is gob.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"

	bolt "go.etcd.io/bbolt"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/shared/bytesutil"
	"github.com/prysmaticlabs/beaconcore/store"
	"github.com/prysmaticlabs/beaconcore/types"
)

var (
	blobBucket      = []byte("blob-bucket")
	blockBucket     = []byte("block-bucket")
	stateBucket     = []byte("state-bucket")
	slotIndexBucket = []byte("slot-index-bucket")
)

// BoltStore implements store.Store.
type BoltStore struct {
	db *bolt.DB
}

// New opens (creating if absent) a bbolt database at path and ensures the
// required buckets exist.
func New(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not open bolt db")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{blobBucket, blockBucket, stateBucket, slotIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create buckets")
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get returns the raw value stored under key.
func (s *BoltStore) Get(ctx context.Context, key [32]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobBucket).Get(key[:])
		if v == nil {
			return store.ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Put stores value under key.
func (s *BoltStore) Put(ctx context.Context, key [32]byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobBucket).Put(key[:], value)
	})
}

// Exists reports whether key is present.
func (s *BoltStore) Exists(ctx context.Context, key [32]byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(blobBucket).Get(key[:]) != nil
		return nil
	})
	return exists, err
}

// PutBlock stores block keyed by root, and records the (slot -> root)
// index entry used by BlockRootForSlot.
func (s *BoltStore) PutBlock(ctx context.Context, root types.Hash256, block *types.SignedBeaconBlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(block); err != nil {
		return errors.Wrap(err, "could not encode block")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blockBucket).Put(root[:], buf.Bytes()); err != nil {
			return err
		}
		return tx.Bucket(slotIndexBucket).Put(encodeSlot(block.Block.Slot), root[:])
	})
}

// GetBlock returns the block stored under root.
func (s *BoltStore) GetBlock(ctx context.Context, root types.Hash256) (*types.SignedBeaconBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var block types.SignedBeaconBlock
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blockBucket).Get(root[:])
		if v == nil {
			return store.ErrNotFound
		}
		return gob.NewDecoder(bytes.NewReader(v)).Decode(&block)
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// PutState stores state keyed by root (invariant 2: "every state written
// to the store is keyed by its own state_root").
func (s *BoltStore) PutState(ctx context.Context, root types.Hash256, state *types.BeaconState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return errors.Wrap(err, "could not encode state")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(root[:], buf.Bytes())
	})
}

// GetState returns the state stored under root. slotHint is accepted to
// satisfy the interface's iterator-assisted lookup contract but is unused
// by this direct-keyed implementation.
func (s *BoltStore) GetState(ctx context.Context, root types.Hash256, _ types.Slot) (*types.BeaconState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var state types.BeaconState
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get(root[:])
		if v == nil {
			return store.ErrNotFound
		}
		return gob.NewDecoder(bytes.NewReader(v)).Decode(&state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// BlockRootForSlot performs a reverse scan of the slot index looking for
// the nearest slot <= slot with a recorded root, matching spec.md §4.A's
// description of block_at_slot as "iterator-based search for
// slot-to-root".
func (s *BoltStore) BlockRootForSlot(ctx context.Context, slot types.Slot) (types.Hash256, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Hash256{}, false, err
	}
	var root types.Hash256
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(slotIndexBucket).Cursor()
		target := encodeSlot(slot)
		k, v := c.Seek(target)
		if k == nil || !bytes.Equal(k, target) {
			k, v = c.Prev()
		}
		if k == nil {
			return nil
		}
		root = bytesutil.ToBytes32(v)
		found = true
		return nil
	})
	return root, found, err
}

func encodeSlot(slot types.Slot) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(slot))
	return b[:]
}

var _ store.Store = (*BoltStore)(nil)
