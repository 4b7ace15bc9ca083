// PeerList holds one Instance per peer in exactly one of four categories,
// grounded on original_source/light-client/src/supervisor.rs's use of
// peers.primary()/primary_mut()/witnesses_ids()/replace_faulty_primary()/
// replace_faulty_witness().
package light

import (
	"fmt"
	"sync"

	"github.com/coinexchain/tm-light-client/types"
)

// PeerList is owned exclusively by the Supervisor (spec.md §5): no other
// component may mutate it.
type PeerList struct {
	mtx sync.Mutex

	primaryID types.PeerId
	instances map[types.PeerId]*Instance

	witnesses []types.PeerId // ordered by insertion
	full      []types.PeerId
	faulty    map[types.PeerId]struct{}
}

// NewPeerList builds a PeerList from a primary and an ordered list of
// witnesses. Invariant (a) of spec.md §3 holds by construction: the
// primary is never also listed as a witness.
func NewPeerList(primary *Instance, witnesses []*Instance) (*PeerList, error) {
	pl := &PeerList{
		instances: make(map[types.PeerId]*Instance),
		faulty:    make(map[types.PeerId]struct{}),
	}
	if primary != nil {
		pl.primaryID = primary.ID
		pl.instances[primary.ID] = primary
	}
	for _, w := range witnesses {
		if w.ID == pl.primaryID {
			return nil, fmt.Errorf("peer %s cannot be both primary and witness", w.ID)
		}
		pl.instances[w.ID] = w
		pl.witnesses = append(pl.witnesses, w.ID)
	}
	return pl, nil
}

// Primary returns the current primary Instance, or nil if none.
func (pl *PeerList) Primary() *Instance {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()
	return pl.instances[pl.primaryID]
}

// PrimaryMut is an alias of Primary kept to mirror the Rust API's
// primary()/primary_mut() split; Go has no borrow-checker distinction to
// preserve, so both return the same mutable *Instance.
func (pl *PeerList) PrimaryMut() *Instance {
	return pl.Primary()
}

// WitnessesIDs returns the current witness peer IDs, in order.
func (pl *PeerList) WitnessesIDs() []types.PeerId {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()
	out := make([]types.PeerId, len(pl.witnesses))
	copy(out, pl.witnesses)
	return out
}

// Get returns the Instance for id, across any category.
func (pl *PeerList) Get(id types.PeerId) (*Instance, bool) {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()
	inst, ok := pl.instances[id]
	return inst, ok
}

// AddFullNode registers a full node eligible for later promotion.
func (pl *PeerList) AddFullNode(inst *Instance) {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()
	pl.instances[inst.ID] = inst
	pl.full = append(pl.full, inst.ID)
}

// ReplaceFaultyPrimary demotes the current primary to faulty and promotes
// the first witness (by insertion order) to primary, per spec.md §4.6.
func (pl *PeerList) ReplaceFaultyPrimary() error {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()

	if pl.primaryID != "" {
		pl.faulty[pl.primaryID] = struct{}{}
	}

	if len(pl.witnesses) == 0 {
		pl.primaryID = ""
		return ErrNoWitnesses()
	}

	newPrimary := pl.witnesses[0]
	pl.witnesses = pl.witnesses[1:]
	pl.primaryID = newPrimary
	return nil
}

// ReplaceFaultyWitness moves id to faulty and, if a full node is
// available, promotes one to witness to maintain the minimum witness
// count, per spec.md §4.6.
func (pl *PeerList) ReplaceFaultyWitness(id types.PeerId) {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()

	pl.faulty[id] = struct{}{}
	for i, w := range pl.witnesses {
		if w == id {
			pl.witnesses = append(pl.witnesses[:i], pl.witnesses[i+1:]...)
			break
		}
	}

	if len(pl.full) > 0 {
		promoted := pl.full[0]
		pl.full = pl.full[1:]
		pl.witnesses = append(pl.witnesses, promoted)
	}
}

// FaultyIDs returns the current faulty peer set, for diagnostics.
func (pl *PeerList) FaultyIDs() []types.PeerId {
	pl.mtx.Lock()
	defer pl.mtx.Unlock()
	out := make([]types.PeerId, 0, len(pl.faulty))
	for id := range pl.faulty {
		out = append(out, id)
	}
	return out
}
