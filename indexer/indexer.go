// Package indexer maintains secondary lookup tables over committed blocks
// so the rpc query surface can resolve "transactions by account" and
// "assets by owner" without queryexec's linear block scan. The tables
// live in their own bbolt database, separate from the consensus-critical
// LevelDB block store, so a corrupt or rebuilt index can never affect
// consensus.
package indexer

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
)

var bucketIndex = []byte("idx")

const (
	prefixAccountTxs = "account:tx:"
	prefixOwnerAsset = "owner:asset:"
	prefixTxHeight   = "tx:height:"
)

// Indexer subscribes to the event bus and updates secondary lookup tables
// as blocks commit, grounded on the teacher's own asset/session indexer
// but re-targeted at accounts and transaction hashes.
type Indexer struct {
	db  *bolt.DB
	log zerolog.Logger
}

// New creates an Indexer backed by db and subscribes it to bus. db must
// already contain (or be able to create) the "idx" bucket.
func New(db *bolt.DB, bus *events.Bus, log zerolog.Logger) (*Indexer, error) {
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketIndex)
		return err
	}); err != nil {
		return nil, fmt.Errorf("indexer: init bucket: %w", err)
	}
	idx := &Indexer{db: db, log: log}
	bus.Subscribe(events.EventCommitted, idx.onCommitted)
	bus.Subscribe(events.EventAssetAdded, idx.onAssetAdded)
	return idx, nil
}

// TransactionHeight returns the block height a transaction was committed
// at, or ledger.ErrTransactionNotFound if the index has no record of it.
func (idx *Indexer) TransactionHeight(hash string) (int64, error) {
	data, err := idx.get(prefixTxHeight + hash)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, ledger.ErrTransactionNotFound
	}
	var height int64
	if err := json.Unmarshal(data, &height); err != nil {
		return 0, fmt.Errorf("indexer: decode height for %s: %w", hash, err)
	}
	return height, nil
}

// TransactionsByAccount returns the hashes of every transaction the given
// account authored, in commit order.
func (idx *Indexer) TransactionsByAccount(account ledger.AccountId) ([]string, error) {
	return idx.getList(prefixAccountTxs + account.String())
}

// AssetsByOwner returns the asset ids ever added to owner's holdings.
// Entries are not removed on transfer-out/burn; callers cross-check
// against live world state for current balances.
func (idx *Indexer) AssetsByOwner(owner ledger.AccountId) ([]string, error) {
	return idx.getList(prefixOwnerAsset + owner.String())
}

// ---- event handlers ----

func (idx *Indexer) onCommitted(ev events.Event) {
	if ev.TxHash == "" {
		return
	}
	data, err := json.Marshal(ev.BlockHeight)
	if err == nil {
		if err := idx.set(prefixTxHeight+ev.TxHash, data); err != nil {
			idx.log.Error().Err(err).Str("tx_hash", ev.TxHash).Msg("index tx height")
		}
	}
	authority, _ := ev.Data["authority"].(string)
	if authority == "" {
		return
	}
	if err := idx.addToList(prefixAccountTxs+authority, ev.TxHash); err != nil {
		idx.log.Error().Err(err).Str("tx_hash", ev.TxHash).Str("authority", authority).Msg("index account tx")
	}
}

func (idx *Indexer) onAssetAdded(ev events.Event) {
	assetID, _ := ev.Data["asset_id"].(string)
	if assetID == "" {
		return
	}
	parsed, err := ledger.ParseAssetId(assetID)
	if err != nil {
		idx.log.Warn().Err(err).Str("asset_id", assetID).Msg("index asset added: parse")
		return
	}
	if err := idx.addToList(prefixOwnerAsset+parsed.Account.String(), assetID); err != nil {
		idx.log.Error().Err(err).Str("asset_id", assetID).Msg("index asset added")
	}
}

// ---- list helpers ----

func (idx *Indexer) getList(key string) ([]string, error) {
	data, err := idx.get(key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("indexer: unmarshal %s: %w", key, err)
	}
	return ids, nil
}

func (idx *Indexer) addToList(key, value string) error {
	ids, err := idx.getList(key)
	if err != nil {
		return fmt.Errorf("indexer: read list: %w", err)
	}
	for _, id := range ids {
		if id == value {
			return nil
		}
	}
	ids = append(ids, value)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return idx.set(key, data)
}

// ---- bbolt helpers ----

// get returns nil, nil when key is absent.
func (idx *Indexer) get(key string) ([]byte, error) {
	var data []byte
	err := idx.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketIndex).Get([]byte(key))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

func (idx *Indexer) set(key string, value []byte) error {
	return idx.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIndex).Put([]byte(key), value)
	})
}
