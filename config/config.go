package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/txlifecycle"
)

// TLSConfig holds paths to the PEM files needed for mTLS.
// When nil or all paths empty, the node falls back to plain TCP.
type TLSConfig struct {
	CACert   string `json:"ca_cert"`   // CA certificate PEM path
	NodeCert string `json:"node_cert"` // node certificate PEM path
	NodeKey  string `json:"node_key"`  // node private key PEM path
}

// SeedPeer identifies a remote node to connect to on startup.
type SeedPeer struct {
	ID   string `json:"id"`   // remote node ID
	Addr string `json:"addr"` // host:port
}

// QueueConfig configures the admission queue (component C3).
type QueueConfig struct {
	Capacity        int           `json:"capacity"`           // default 10000
	CapacityPerUser int           `json:"capacity_per_user"`  // default 128
	TTLMs           int64         `json:"ttl_ms"`             // default 86_400_000 (24h)
	FutureThresholdMs int64       `json:"future_threshold_ms"` // default 1000
}

func (q QueueConfig) toQueueConfig() queue.Config {
	return queue.Config{
		Capacity:        q.Capacity,
		CapacityPerUser: q.CapacityPerUser,
		TTL:             time.Duration(q.TTLMs) * time.Millisecond,
		FutureThreshold: time.Duration(q.FutureThresholdMs) * time.Millisecond,
	}
}

// TransactionConfig configures acceptance-time structural limits
// (component C4).
type TransactionConfig struct {
	MaxInstructions int `json:"max_instructions"` // default 4096
	MaxWasmBytes    int `json:"max_wasm_bytes"`    // default 4 MiB
}

func (t TransactionConfig) toAcceptanceLimits() txlifecycle.AcceptanceLimits {
	return txlifecycle.AcceptanceLimits{MaxInstructions: t.MaxInstructions, MaxWasmBytes: t.MaxWasmBytes}
}

// MetadataConfig configures the per-entity metadata container bounds
// (invariant 8 — every Domain/Account/AssetDefinition/Asset/Trigger
// metadata map is checked against the same limits).
type MetadataConfig struct {
	MaxLen           int `json:"max_len"`             // default 1024
	MaxEntryByteSize int `json:"max_entry_byte_size"` // default 4096
}

func (m MetadataConfig) toMetadataLimits() ledger.MetadataLimits {
	return ledger.MetadataLimits{MaxLen: m.MaxLen, MaxEntryByteSize: m.MaxEntryByteSize}
}

// BlockConfig configures block assembly (component C7).
type BlockConfig struct {
	MaxBlockTxs    int `json:"max_block_txs"`     // 0 → 500
	ProposeEveryMs int `json:"propose_every_ms"`  // 0 → 2000
}

// GenesisConfig points at the genesis document and the peer's own key
// material, mirroring the teacher's Alloc-map genesis section but
// generalized to the full instruction-list genesis document package
// genesis consumes.
type GenesisConfig struct {
	ChainID      string `json:"chain_id"`
	DocumentPath string `json:"document_path"` // path to a genesis.Document JSON file
}

// Config holds all node configuration.
type Config struct {
	NodeID       string             `json:"node_id"`
	DataDir      string             `json:"data_dir"`
	RPCPort      int                `json:"rpc_port"`
	P2PPort      int                `json:"p2p_port"`
	Validators   []string           `json:"validators"` // authorised proposer pubkey hexes
	Genesis      GenesisConfig      `json:"genesis"`
	Queue        QueueConfig        `json:"queue"`
	Transaction  TransactionConfig  `json:"transaction"`
	Metadata     MetadataConfig     `json:"metadata"`
	Block        BlockConfig        `json:"block"`
	SeedPeers    []SeedPeer         `json:"seed_peers,omitempty"`
	TLS          *TLSConfig         `json:"tls,omitempty"`
	RPCAuthToken string             `json:"rpc_auth_token,omitempty"`
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:  "node0",
		DataDir: "./data",
		RPCPort: 8545,
		P2PPort: 30303,
		Genesis: GenesisConfig{ChainID: "ledgerd-dev"},
		Queue: QueueConfig{
			Capacity: 10000, CapacityPerUser: 128,
			TTLMs: 86_400_000, FutureThresholdMs: 1000,
		},
		Transaction: TransactionConfig{MaxInstructions: 4096, MaxWasmBytes: 4 << 20},
		Metadata:    MetadataConfig{MaxLen: 1024, MaxEntryByteSize: 4096},
		Block:       BlockConfig{MaxBlockTxs: 500, ProposeEveryMs: 2000},
	}
}

// Load reads a JSON config file from path and validates required fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// QueueRuntimeConfig converts to the queue package's runtime Config.
func (c *Config) QueueRuntimeConfig() queue.Config { return c.Queue.toQueueConfig() }

// AcceptanceLimits converts to the txlifecycle package's runtime limits.
func (c *Config) AcceptanceLimits() txlifecycle.AcceptanceLimits { return c.Transaction.toAcceptanceLimits() }

// MetadataLimits converts to the ledger package's runtime limits.
func (c *Config) MetadataLimits() ledger.MetadataLimits { return c.Metadata.toMetadataLimits() }

// Validate checks that all required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node_id must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Genesis.ChainID == "" {
		return fmt.Errorf("genesis.chain_id must not be empty")
	}
	if c.RPCPort <= 0 || c.RPCPort > 65535 {
		return fmt.Errorf("rpc_port must be 1-65535, got %d", c.RPCPort)
	}
	if c.P2PPort <= 0 || c.P2PPort > 65535 {
		return fmt.Errorf("p2p_port must be 1-65535, got %d", c.P2PPort)
	}
	if c.RPCPort == c.P2PPort {
		return fmt.Errorf("rpc_port and p2p_port must not be the same (%d)", c.RPCPort)
	}
	if len(c.Validators) == 0 {
		return fmt.Errorf("validators list must not be empty")
	}
	for i, v := range c.Validators {
		b, err := hex.DecodeString(v)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("validators[%d]: must be 64-char hex (32 bytes ed25519 pubkey), got %q", i, v)
		}
	}
	if c.Queue.Capacity <= 0 {
		return fmt.Errorf("queue.capacity must be positive")
	}
	if c.Queue.CapacityPerUser <= 0 {
		return fmt.Errorf("queue.capacity_per_user must be positive")
	}
	if c.Transaction.MaxInstructions <= 0 {
		return fmt.Errorf("transaction.max_instructions must be positive")
	}
	if c.TLS != nil {
		t := c.TLS
		allSet := t.CACert != "" && t.NodeCert != "" && t.NodeKey != ""
		allEmpty := t.CACert == "" && t.NodeCert == "" && t.NodeKey == ""
		if !allSet && !allEmpty {
			return fmt.Errorf("tls: all three paths (ca_cert, node_cert, node_key) must be set or all empty")
		}
	}
	return nil
}

// Save writes the config to path as formatted JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
