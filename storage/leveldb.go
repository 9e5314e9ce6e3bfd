package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/wire"
)

// ErrNotFound is returned by LevelDB.Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// LevelDB wraps a goleveldb database with DB's Get, Set, Delete,
// NewIterator and Close methods. It has no NewBatch, so it does not
// satisfy the DB interface.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (or creates) a LevelDB database at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %q: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return val, err
}

func (l *LevelDB) Set(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) NewIterator(prefix []byte) Iterator {
	return l.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

// ---- blockchain.Store implementation ----

// LevelBlockStore implements blockchain.Store on top of LevelDB: blocks
// under "block:<hash>", height index under "height:<n>", tip under
// "chain:tip" — the same three-key layout the teacher's original
// BlockStore used, generalized to *wire.Block and collapsed from three
// separate writer calls into the one CommitBlock call
// blockchain.Chain.Append expects.
type LevelBlockStore struct {
	db *LevelDB
}

// NewLevelBlockStore wraps a LevelDB instance as a blockchain.Store.
func NewLevelBlockStore(db *LevelDB) *LevelBlockStore {
	return &LevelBlockStore{db: db}
}

func (s *LevelBlockStore) GetBlock(hash string) (*wire.Block, error) {
	data, err := s.db.Get([]byte("block:" + hash))
	if err == ErrNotFound {
		return nil, blockchain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var b wire.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("storage: decode block %s: %w", hash, err)
	}
	return &b, nil
}

func (s *LevelBlockStore) GetBlockByHeight(height int64) (*wire.Block, error) {
	key := fmt.Sprintf("height:%d", height)
	hash, err := s.db.Get([]byte(key))
	if err == ErrNotFound {
		return nil, blockchain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetBlock(string(hash))
}

func (s *LevelBlockStore) GetTip() (string, error) {
	val, err := s.db.Get([]byte("chain:tip"))
	if err == ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (s *LevelBlockStore) SetTip(hash string) error {
	return s.db.Set([]byte("chain:tip"), []byte(hash))
}

// CommitBlock persists block, indexes it by height, and advances the tip
// — the single write blockchain.Chain.Append performs once height
// continuity and previous-hash linkage have already been checked.
func (s *LevelBlockStore) CommitBlock(block *wire.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("storage: encode block %s: %w", block.Hash, err)
	}
	if err := s.db.Set([]byte("block:"+block.Hash), data); err != nil {
		return fmt.Errorf("storage: put block %s: %w", block.Hash, err)
	}
	heightKey := fmt.Sprintf("height:%d", block.Header.Height)
	if err := s.db.Set([]byte(heightKey), []byte(block.Hash)); err != nil {
		return fmt.Errorf("storage: index block %s by height: %w", block.Hash, err)
	}
	return s.SetTip(block.Hash)
}
