package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tolelom/ledgerd/events"
)

func TestTrackerMirrorsMintAndBurnIntoGauge(t *testing.T) {
	bus := events.NewBus()
	NewTracker(bus)

	bus.Publish(events.Event{Type: events.EventAssetAdded, Data: map[string]any{
		"asset_id": "gold#wonderland#ed0120alice@wonderland",
		"amount":   "100",
	}})
	bus.Publish(events.Event{Type: events.EventAssetRemoved, Data: map[string]any{
		"asset_id": "gold#wonderland#ed0120alice@wonderland",
		"amount":   "40",
	}})

	got := testutil.ToFloat64(assetTotalAmount.WithLabelValues("gold#wonderland"))
	assert.Equal(t, 60.0, got)
}

func TestTrackerIgnoresEventsMissingAmount(t *testing.T) {
	bus := events.NewBus()
	NewTracker(bus)

	bus.Publish(events.Event{Type: events.EventAssetAdded, Data: map[string]any{
		"asset_id": "silver#wonderland#ed0120alice@wonderland",
	}})

	got := testutil.ToFloat64(assetTotalAmount.WithLabelValues("silver#wonderland"))
	assert.Equal(t, 0.0, got)
}

func TestTrackerCountsCommittedTransactionsAndBlocks(t *testing.T) {
	bus := events.NewBus()
	NewTracker(bus)

	before := testutil.ToFloat64(transactionsCommitted)
	bus.Publish(events.Event{Type: events.EventCommitted, TxHash: "h1"})
	assert.Equal(t, before+1, testutil.ToFloat64(transactionsCommitted))

	beforeBlocks := testutil.ToFloat64(blocksCommitted)
	bus.Publish(events.Event{Type: events.EventBlockCommitted, BlockHeight: 1})
	assert.Equal(t, beforeBlocks+1, testutil.ToFloat64(blocksCommitted))
}

func TestSetQueueDepth(t *testing.T) {
	SetQueueDepth(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(queueDepth))
}
