package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tolelom/ledgerd/genesis"
)

// LoadGenesisDocument reads and decodes the genesis document cfg.Genesis
// points at. CreateGenesisBlock (the teacher's Alloc-map approach) has no
// equivalent here: genesis.Bootstrap takes a full genesis.Document, not a
// config-embedded balance map, so loading the document is config's only
// remaining responsibility.
func (c *Config) LoadGenesisDocument() (genesis.Document, error) {
	data, err := os.ReadFile(c.Genesis.DocumentPath)
	if err != nil {
		return genesis.Document{}, fmt.Errorf("config: read genesis document %q: %w", c.Genesis.DocumentPath, err)
	}
	var doc genesis.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return genesis.Document{}, fmt.Errorf("config: decode genesis document: %w", err)
	}
	if doc.Chain != c.Genesis.ChainID {
		return genesis.Document{}, fmt.Errorf("config: genesis document chain %q does not match configured chain_id %q",
			doc.Chain, c.Genesis.ChainID)
	}
	return doc, nil
}
