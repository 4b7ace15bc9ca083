// Package db implements a persistent light.Store backed by a
// github.com/tendermint/tm-db key-value engine, grounded line-for-line on
// the teacher's lite/providers/db/db.go: chainID-scoped keys (laid out
// here as chainID/status/height), the same go-amino codec, the same
// ReverseIterator-based latest() lookup and deleteAfterN-style pruning,
// generalized here from the teacher's single "trusted" bucket to the
// four-status model of spec.md §3.
package db

import (
	"fmt"
	"regexp"
	"strconv"

	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/coinexchain/tm-light-client/light/store"
	"github.com/coinexchain/tm-light-client/types"
)

// statusPrefix names the four key prefixes of spec.md §6's persistent
// store contract: {unverified, verified, trusted, failed}.
func statusPrefix(status store.Status) string {
	switch status {
	case store.StatusUnverified:
		return "unverified"
	case store.StatusVerified:
		return "verified"
	case store.StatusTrusted:
		return "trusted"
	case store.StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is a persistent store.Store. Values are the canonical LightBlock
// encoding (amino); keys are "<chainID>/<prefix>/<height>".
type Store struct {
	chainID string
	db      dbm.DB
	cdc     *amino.Codec

	logger log.Logger
}

// New returns a persistent store for chainID backed by db.
func New(chainID string, db dbm.DB) *Store {
	cdc := amino.NewCodec()
	return &Store{
		chainID: chainID,
		db:      db,
		cdc:     cdc,
		logger:  log.NewNopLogger(),
	}
}

func (s *Store) SetLogger(logger log.Logger) {
	s.logger = logger.With("module", "light")
}

var _ store.Store = (*Store)(nil)

// Get returns the block recorded at (height, status).
//
// update() moves a block between statuses by deleting its old key and
// writing the new one in the same batch, so it is never observed at zero
// or two statuses (spec.md §6's atomicity requirement).
func (s *Store) Get(height types.Height, status store.Status) (*types.LightBlock, bool) {
	bz := s.db.Get(key(s.chainID, statusPrefix(status), height))
	if bz == nil {
		return nil, false
	}
	lb, err := s.decode(bz)
	if err != nil {
		s.logger.Error("Store.Get() failed to decode light block", "height", height, "err", err)
		return nil, false
	}
	return lb, true
}

func (s *Store) Insert(lb *types.LightBlock, status store.Status) error {
	bz, err := s.encode(lb)
	if err != nil {
		return err
	}
	return s.db.SetSync(key(s.chainID, statusPrefix(status), lb.Height()), bz)
}

// Update atomically moves lb to status, clearing every other status
// recorded at lb.Height() in a single batch write (spec.md §8 invariant 6).
func (s *Store) Update(lb *types.LightBlock, status store.Status) error {
	bz, err := s.encode(lb)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, st := range []store.Status{
		store.StatusUnverified, store.StatusVerified, store.StatusTrusted, store.StatusFailed,
	} {
		if st == status {
			continue
		}
		batch.Delete(key(s.chainID, statusPrefix(st), lb.Height()))
	}
	batch.Set(key(s.chainID, statusPrefix(status), lb.Height()), bz)
	return batch.WriteSync()
}

func (s *Store) Remove(height types.Height, status store.Status) error {
	return s.db.DeleteSync(key(s.chainID, statusPrefix(status), height))
}

// Latest returns the block of maximum height recorded under status, found
// via a ReverseIterator over that status's key range, exactly as the
// teacher's DB.LatestFullCommit does.
func (s *Store) Latest(status store.Status) (*types.LightBlock, bool) {
	prefix := statusPrefix(status)
	itr := s.db.ReverseIterator(
		key(s.chainID, prefix, 1),
		append(key(s.chainID, prefix, 1<<62), byte(0x00)),
	)
	defer itr.Close()

	for itr.Valid() {
		if !s.ownsKey(itr.Key(), prefix) {
			itr.Next()
			continue
		}
		lb, err := s.decode(itr.Value())
		if err != nil {
			s.logger.Error("Store.Latest() failed to decode light block", "err", err)
			itr.Next()
			continue
		}
		return lb, true
	}
	return nil, false
}

// All returns every block recorded under status, ascending by height.
func (s *Store) All(status store.Status) ([]*types.LightBlock, error) {
	prefix := statusPrefix(status)
	itr := s.db.Iterator(
		key(s.chainID, prefix, 1),
		append(key(s.chainID, prefix, 1<<62), byte(0x00)),
	)
	defer itr.Close()

	var out []*types.LightBlock
	for ; itr.Valid(); itr.Next() {
		if !s.ownsKey(itr.Key(), prefix) {
			continue
		}
		lb, err := s.decode(itr.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, lb)
	}
	return out, nil
}

// ownsKey guards the iterators above against a dbm.DB shared by Stores for
// different chains (the teacher's db.go is built on the same assumption: a
// single key-value engine backing multiple chainID-scoped stores). The
// range bounds passed to Iterator/ReverseIterator already confine results
// to this chainID/prefix, but a corrupt or foreign-writer key would
// otherwise decode silently; parseKey lets Latest/All reject it instead.
func (s *Store) ownsKey(k []byte, prefix string) bool {
	chainID, gotPrefix, _, ok := parseKey(k)
	if !ok {
		s.logger.Error("Store iterator encountered a malformed key", "key", string(k))
		return false
	}
	if chainID != s.chainID || gotPrefix != prefix {
		s.logger.Error("Store iterator encountered a key outside its scope",
			"key", string(k), "chainID", s.chainID, "prefix", prefix)
		return false
	}
	return true
}

// Prune deletes every block, in every status, below retainHeight,
// grounded on the teacher's DB.SetLimit/deleteAfterN maintenance
// operation (SPEC_FULL.md §10). Not part of spec.md's core invariants;
// callers may invoke it between Supervisor requests.
func (s *Store) Prune(retainHeight types.Height) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, st := range []store.Status{
		store.StatusUnverified, store.StatusVerified, store.StatusTrusted, store.StatusFailed,
	} {
		prefix := statusPrefix(st)
		itr := s.db.Iterator(key(s.chainID, prefix, 1), key(s.chainID, prefix, retainHeight))
		for ; itr.Valid(); itr.Next() {
			batch.Delete(append([]byte{}, itr.Key()...))
		}
		itr.Close()
	}
	return batch.WriteSync()
}

func (s *Store) encode(lb *types.LightBlock) ([]byte, error) {
	return s.cdc.MarshalBinaryLengthPrefixed(lb)
}

func (s *Store) decode(bz []byte) (*types.LightBlock, error) {
	var lb types.LightBlock
	if err := s.cdc.UnmarshalBinaryLengthPrefixed(bz, &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

//----------------------------------------
// key encoding, grounded on the teacher's signedHeaderKey/validatorSetKey.

func key(chainID, prefix string, height types.Height) []byte {
	return []byte(fmt.Sprintf("%s/%s/%020d", chainID, prefix, height))
}

var keyPattern = regexp.MustCompile(`^([^/]+)/([^/]+)/([0-9]+)$`)

func parseKey(k []byte) (chainID, prefix string, height types.Height, ok bool) {
	m := keyPattern.FindSubmatch(k)
	if m == nil {
		return "", "", 0, false
	}
	h, err := strconv.ParseInt(string(m[3]), 10, 64)
	if err != nil {
		return "", "", 0, false
	}
	return string(m[1]), string(m[2]), h, true
}
