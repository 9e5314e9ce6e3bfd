// Package queue implements the bounded, multi-producer/single-consumer
// transaction admission pool (component C3): a fixed-capacity ring buffer
// of transaction hashes for arrival order, a concurrent hash-to-transaction
// map, a concurrent per-authority counter, and a pluggable clock.
//
// Grounded on _examples/original_source/core/src/queue.rs. Rust's
// crossbeam ArrayQueue/DashMap have no direct Go equivalent in the
// retrieval pack; a capacity-bounded channel used with non-blocking
// send/receive gives the same bounded-FIFO-with-fast-failure semantics,
// and sync.Map plus a per-entry mutex gives the same concurrent-map
// semantics DashMap provides.
package queue

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tolelom/ledgerd/ledger"
)

// Transaction is the minimal surface the queue needs from a signed
// transaction envelope. package wire's Transaction implements this.
type Transaction interface {
	Hash() string
	Authority() ledger.AccountId
	CreationTime() time.Time
	TTL() time.Duration // 0 means "use the queue's configured default"
	SignatoryPublicKey() string
}

// StateView is the read-only projection of the world state the queue needs
// to detect transactions already committed to the chain.
type StateView interface {
	HasTransaction(hash string) bool
}

// EventSink receives queue lifecycle notifications. Kept as a narrow local
// interface (rather than importing package events directly) so the queue
// has no dependency on the event taxonomy's shape.
type EventSink interface {
	TransactionQueued(hash string)
	TransactionExpired(hash string)
}

type nopSink struct{}

func (nopSink) TransactionQueued(string) {}
func (nopSink) TransactionExpired(string) {}

// Config bounds the queue, sourced from config.Config's queue.* knobs.
type Config struct {
	Capacity        int
	CapacityPerUser int
	TTL             time.Duration
	FutureThreshold time.Duration
}

// Queue is the admission pool. Safe for concurrent Push from many
// goroutines; GetTransactionsForBlock must be called by at most one
// goroutine at a time (the block assembler owns it exclusively).
type Queue struct {
	cfg   Config
	clock Clock
	sink  EventSink

	ring chan string // capacity-bounded; acts as the arrival-order ring buffer

	accepted sync.Map // hash -> Transaction
	total    int64    // atomic: len(accepted), since sync.Map has no Len

	perUser sync.Map // authority string -> *int64 (atomic counter)
}

// New creates an empty Queue. Pass nil sink to discard lifecycle events.
func New(cfg Config, clock Clock, sink EventSink) *Queue {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &Queue{
		cfg:   cfg,
		clock: clock,
		sink:  sink,
		ring:  make(chan string, cfg.Capacity),
	}
}

func (q *Queue) userCounter(authority string) *int64 {
	v, _ := q.perUser.LoadOrStore(authority, new(int64))
	return v.(*int64)
}

// Push runs the admission check set against tx in the order spec.md §4.3
// prescribes and, on success, enqueues it. The per-entry map is inserted
// before the ring-buffer send so a concurrent pop never observes a hash
// with no backing entry.
func (q *Queue) Push(tx Transaction, view StateView) error {
	now := q.clock.Now()

	if tx.CreationTime().Sub(now) > q.cfg.FutureThreshold {
		return ErrInFuture
	}

	ttl := q.cfg.TTL
	if tx.TTL() > 0 && tx.TTL() < ttl {
		ttl = tx.TTL()
	}
	if now.Sub(tx.CreationTime()) > ttl {
		return ErrExpired
	}

	hash := tx.Hash()
	if view != nil && view.HasTransaction(hash) {
		return ErrInBlockchain
	}

	if tx.Authority().Signatory != tx.SignatoryPublicKey() {
		return ErrSignatoryInconsistent
	}

	if _, loaded := q.accepted.Load(hash); loaded {
		return ErrIsInQueue
	}

	if atomic.LoadInt64(&q.total) >= int64(q.cfg.Capacity) {
		return ErrFull
	}

	authority := tx.Authority().String()
	counter := q.userCounter(authority)
	if atomic.LoadInt64(counter) >= int64(q.cfg.CapacityPerUser) {
		return ErrMaximumTransactionsPerUser
	}

	if _, loaded := q.accepted.LoadOrStore(hash, tx); loaded {
		return ErrIsInQueue
	}
	atomic.AddInt64(&q.total, 1)
	atomic.AddInt64(counter, 1)

	select {
	case q.ring <- hash:
		q.sink.TransactionQueued(hash)
		return nil
	default:
		// Ring lost the race against capacity: roll the insert back.
		q.accepted.Delete(hash)
		atomic.AddInt64(&q.total, -1)
		q.decrementUser(authority)
		return ErrFull
	}
}

// decrementUser decrements an authority's pending-tx counter. Going
// negative means a bookkeeping invariant broke elsewhere in the queue;
// that is not a recoverable admission error, so it panics rather than
// silently corrupting the counter (spec.md §5: counter underflow is a bug).
func (q *Queue) decrementUser(authority string) {
	counter := q.userCounter(authority)
	if atomic.AddInt64(counter, -1) < 0 {
		panic(fmt.Sprintf("queue: per-user counter underflow for authority %s", authority))
	}
}

func (q *Queue) remove(hash string, tx Transaction) {
	if _, ok := q.accepted.LoadAndDelete(hash); !ok {
		return
	}
	atomic.AddInt64(&q.total, -1)
	q.decrementUser(tx.Authority().String())
}

// recheck re-applies the checks that can change between admission and
// draining (everything time- and chain-state dependent); it never touches
// capacity, since a transaction already holding a slot doesn't compete for
// one again.
func (q *Queue) recheck(tx Transaction, view StateView) error {
	now := q.clock.Now()
	ttl := q.cfg.TTL
	if tx.TTL() > 0 && tx.TTL() < ttl {
		ttl = tx.TTL()
	}
	if now.Sub(tx.CreationTime()) > ttl {
		return ErrExpired
	}
	if view != nil && view.HasTransaction(tx.Hash()) {
		return ErrInBlockchain
	}
	if tx.Authority().Signatory != tx.SignatoryPublicKey() {
		return ErrSignatoryInconsistent
	}
	return nil
}

// GetTransactionsForBlock drains up to max hashes in arrival order. Each
// hash is re-validated against the current view: expired ones are dropped
// with a TransactionExpired event, other failures are dropped silently
// (already superseded by a committed block), and survivors not selected
// for this block are pushed back onto the ring to preserve fairness for
// the next round. Must be called by a single goroutine at a time.
func (q *Queue) GetTransactionsForBlock(view StateView, max int) []Transaction {
	// Drain everything currently buffered into a local slice first so we
	// never re-process hashes we ourselves push back onto the ring within
	// this call.
	var batch []string
	for {
		select {
		case h := <-q.ring:
			batch = append(batch, h)
		default:
			goto drained
		}
	}
drained:

	out := make([]Transaction, 0, max)
	for _, hash := range batch {
		v, ok := q.accepted.Load(hash)
		if !ok {
			continue // popped-and-taken or popped-and-discarded elsewhere
		}
		tx := v.(Transaction)

		if err := q.recheck(tx, view); err != nil {
			if err == ErrExpired {
				q.sink.TransactionExpired(hash)
			}
			q.remove(hash, tx)
			continue
		}

		if len(out) < max {
			out = append(out, tx)
			q.remove(hash, tx)
			continue
		}

		// Already at capacity for this block: keep it queued for next time.
		select {
		case q.ring <- hash:
		default:
			// Ring is saturated again; drop the entry entirely rather than
			// leaking a map entry with no ring slot.
			q.remove(hash, tx)
		}
	}
	return out
}

// RandomTransactions samples up to n currently-queued transactions without
// removing them, re-validating each against view. Grounded in
// queue.rs's n_random_transactions, added per SPEC_FULL.md §4 item 1.
func (q *Queue) RandomTransactions(view StateView, n int) []Transaction {
	out := make([]Transaction, 0, n)
	q.accepted.Range(func(key, value any) bool {
		if len(out) >= n {
			return false
		}
		tx := value.(Transaction)
		if q.recheck(tx, view) == nil {
			out = append(out, tx)
		}
		return true
	})
	return out
}

// Len reports the number of transactions currently admitted.
func (q *Queue) Len() int { return int(atomic.LoadInt64(&q.total)) }

// HasTransaction reports whether hash is currently queued.
func (q *Queue) HasTransaction(hash string) bool {
	_, ok := q.accepted.Load(hash)
	return ok
}
