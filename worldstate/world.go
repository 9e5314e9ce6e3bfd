// Package worldstate implements the replicated world state (component C2):
// indexed in-memory storage of domains, accounts, asset definitions,
// assets, roles and triggers, with snapshot/commit semantics so block
// validation (a write snapshot) never disturbs concurrent query reads (a
// view of the last committed state).
//
// Grounded on storage/statedb.go's Snapshot/RevertToSnapshot/Commit shape,
// generalized from the teacher's flat account/asset maps to spec.md §3's
// full domain/account/asset-definition/asset/role/trigger model and its
// invariants.
package worldstate

import (
	"fmt"
	"sync"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
)

// snapshotData is the full mutable picture of the world at one instant.
// Once installed on World.data it is treated as immutable; every write
// snapshot works against its own clone.
type snapshotData struct {
	domains  map[ledger.DomainId]*ledger.Domain
	roles    map[ledger.RoleId]*ledger.Role
	triggers map[string]*ledger.Trigger // keyed by TriggerId.String()
	params   map[string]string
	txHashes map[string]struct{}
	peers    []ledger.Peer
	height   int64
}

func newSnapshotData() *snapshotData {
	return &snapshotData{
		domains:  make(map[ledger.DomainId]*ledger.Domain),
		roles:    make(map[ledger.RoleId]*ledger.Role),
		triggers: make(map[string]*ledger.Trigger),
		params:   make(map[string]string),
		txHashes: make(map[string]struct{}),
	}
}

func (s *snapshotData) clone() *snapshotData {
	out := &snapshotData{
		domains:  make(map[ledger.DomainId]*ledger.Domain, len(s.domains)),
		roles:    make(map[ledger.RoleId]*ledger.Role, len(s.roles)),
		triggers: make(map[string]*ledger.Trigger, len(s.triggers)),
		params:   make(map[string]string, len(s.params)),
		txHashes: s.txHashes, // copy-on-write below only when a tx is recorded
		height:   s.height,
	}
	for k, v := range s.domains {
		out.domains[k] = v.Clone()
	}
	for k, v := range s.roles {
		out.roles[k] = v.Clone()
	}
	for k, v := range s.triggers {
		out.triggers[k] = v.Clone()
	}
	for k, v := range s.params {
		out.params[k] = v
	}
	out.peers = s.peers
	return out
}

// World owns the single canonical copy of the replicated state. All
// mutation flows through exactly one write snapshot at a time (the block
// assembler thread); reads via View never block on it.
type World struct {
	mu     sync.RWMutex
	data   *snapshotData
	limits ledger.MetadataLimits
}

// New creates an empty World (pre-genesis).
func New(limits ledger.MetadataLimits) *World {
	return &World{data: newSnapshotData(), limits: limits}
}

// View returns a read-only snapshot of the last committed state.
func (w *World) View() *View {
	w.mu.RLock()
	d := w.data
	w.mu.RUnlock()
	return &View{data: d}
}

// Block opens a write snapshot cloned from the last committed state.
func (w *World) Block() *WriteSnapshot {
	w.mu.RLock()
	base := w.data
	w.mu.RUnlock()
	return &WriteSnapshot{
		View:   View{data: base.clone()},
		limits: w.limits,
		buf:    events.NewBuffer(),
	}
}

// Commit atomically installs ws as the new committed state, advances the
// block height, and flushes ws's buffered events to bus. It is the only
// mutator of World.data.
func (w *World) Commit(ws *WriteSnapshot, bus *events.Bus) {
	ws.data.height++
	w.mu.Lock()
	w.data = ws.data
	w.mu.Unlock()
	ws.buf.Flush(bus)
}

// Height reports the last committed block height.
func (w *World) Height() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data.height
}

// SetPeers installs the consensus topology. Called once by the genesis
// loader; the closed instruction algebra has no runtime peer mutation.
func (w *World) SetPeers(peers []ledger.Peer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data.peers = peers
}

// domainKey / accountKey / etc. below are small helpers shared by View and
// WriteSnapshot for map-key derivation.

func domainOrErr(d *ledger.Domain, id ledger.DomainId) (*ledger.Domain, error) {
	if d == nil {
		return nil, fmt.Errorf("worldstate: domain %q: %w", id, ledger.ErrDomainNotFound)
	}
	return d, nil
}
