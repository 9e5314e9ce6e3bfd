package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/genesis"
)

func validHexPubkey() string {
	return "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
}

func TestDefaultConfigIsInvalidWithoutValidators(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
}

func TestValidConfigPasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators = []string{validHexPubkey()}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsSamePorts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators = []string{validHexPubkey()}
	cfg.P2PPort = cfg.RPCPort
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMalformedValidatorKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators = []string{"not-hex"}
	assert.Error(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators = []string{validHexPubkey()}
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.NodeID, loaded.NodeID)
	assert.Equal(t, cfg.Queue.Capacity, loaded.Queue.Capacity)
}

func TestLoadGenesisDocumentRejectsChainMismatch(t *testing.T) {
	doc := genesis.Document{Chain: "other-chain"}
	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	cfg := DefaultConfig()
	cfg.Genesis.DocumentPath = path
	_, err = cfg.LoadGenesisDocument()
	assert.Error(t, err)
}

func TestLoadGenesisDocumentSucceeds(t *testing.T) {
	cfg := DefaultConfig()
	doc := genesis.Document{Chain: cfg.Genesis.ChainID}
	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	cfg.Genesis.DocumentPath = path

	loaded, err := cfg.LoadGenesisDocument()
	require.NoError(t, err)
	assert.Equal(t, cfg.Genesis.ChainID, loaded.Chain)
}
