// Package telemetry mirrors per-asset-definition total quantities into
// floating-point Prometheus gauges. This is the float side of spec.md's
// mint/burn open question: the fixed-point counter
// worldstate.WriteSnapshot.IncreaseAssetTotalAmount/DecreaseAssetTotalAmount
// maintains is the source of truth; this package's gauges exist purely for
// dashboards and must never be read back into consensus or queryexec.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
)

var (
	assetTotalAmount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledgerd_asset_total_amount",
			Help: "Floating-point mirror of each asset definition's total minted quantity. Telemetry only, not consulted by consensus or queries.",
		},
		[]string{"asset_definition"},
	)

	transactionsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledgerd_transactions_committed_total",
			Help: "Total number of transactions accepted into a committed block.",
		},
	)

	transactionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerd_transactions_rejected_total",
			Help: "Total number of transactions rejected during block assembly, by reason.",
		},
		[]string{"reason"},
	)

	blocksCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledgerd_blocks_committed_total",
			Help: "Total number of blocks appended to the chain.",
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerd_queue_depth",
			Help: "Number of transactions currently held in the admission queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(assetTotalAmount)
	prometheus.MustRegister(transactionsCommitted)
	prometheus.MustRegister(transactionsRejected)
	prometheus.MustRegister(blocksCommitted)
	prometheus.MustRegister(queueDepth)
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetQueueDepth reports the admission queue's current length.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// Tracker subscribes to the event bus and updates the telemetry gauges as
// blocks commit. It holds no state consulted elsewhere in the peer.
type Tracker struct {
	mu sync.Mutex
}

// NewTracker creates a Tracker and wires it to bus.
func NewTracker(bus *events.Bus) *Tracker {
	t := &Tracker{}
	bus.Subscribe(events.EventAssetAdded, t.onAssetAdded)
	bus.Subscribe(events.EventAssetRemoved, t.onAssetRemoved)
	bus.Subscribe(events.EventCommitted, t.onCommitted)
	bus.Subscribe(events.EventRejected, t.onRejected)
	bus.Subscribe(events.EventBlockCommitted, t.onBlockCommitted)
	return t
}

func (t *Tracker) onAssetAdded(ev events.Event) { t.adjust(ev, 1) }
func (t *Tracker) onAssetRemoved(ev events.Event) { t.adjust(ev, -1) }

func (t *Tracker) adjust(ev events.Event, sign float64) {
	assetID, _ := ev.Data["asset_id"].(string)
	amountStr, _ := ev.Data["amount"].(string)
	if assetID == "" || amountStr == "" {
		return
	}
	parsed, err := ledger.ParseAssetId(assetID)
	if err != nil {
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	assetTotalAmount.WithLabelValues(parsed.Definition.String()).Add(sign * amount)
}

func (t *Tracker) onCommitted(events.Event) {
	transactionsCommitted.Inc()
}

func (t *Tracker) onRejected(ev events.Event) {
	kind, _ := ev.Data["kind"].(string)
	if kind == "" {
		kind = "unknown"
	}
	transactionsRejected.WithLabelValues(kind).Inc()
}

func (t *Tracker) onBlockCommitted(events.Event) {
	blocksCommitted.Inc()
}
