// Command ledgerd runs a permissioned-ledger peer: it loads a node
// configuration and validator key, opens local storage, bootstraps or
// resumes the replicated world state, and serves JSON-RPC queries and
// transaction submission while participating in round-robin block
// production.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"

	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/config"
	"github.com/tolelom/ledgerd/consensus"
	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/crypto/certgen"
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/genesis"
	"github.com/tolelom/ledgerd/indexer"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/network"
	"github.com/tolelom/ledgerd/queryexec"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/rpc"
	"github.com/tolelom/ledgerd/storage"
	"github.com/tolelom/ledgerd/telemetry"
	"github.com/tolelom/ledgerd/txlifecycle"
	"github.com/tolelom/ledgerd/txverify"
	"github.com/tolelom/ledgerd/wallet"
	"github.com/tolelom/ledgerd/worldstate"
)

var (
	cfgPath  string
	keyPath  string
	logLevel string
	logJSON  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerd runs a permissioned-ledger peer",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.json", "path to config file")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "validator.key", "path to keystore file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "output logs as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(gencertsCmd)
	rootCmd.AddCommand(initGenesisCmd)
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if logJSON {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func keystorePassword() string {
	password := os.Getenv("LEDGERD_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "WARNING: LEDGERD_PASSWORD not set — keystore will use an empty password")
	}
	return password
}

// ---- keygen ----

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "generate a new validator key and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.Generate()
		if err != nil {
			return err
		}
		if err := wallet.SaveKey(keyPath, keystorePassword(), w.PrivKey()); err != nil {
			return err
		}
		fmt.Printf("Generated key. Public key: %s\n", w.PubKey())
		fmt.Printf("Saved to: %s\n", keyPath)
		return nil
	},
}

// ---- gencerts ----

var gencertsDir string

var gencertsCmd = &cobra.Command{
	Use:   "gencerts",
	Short: "generate a self-signed CA and node TLS certs and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := certgen.GenerateAll(gencertsDir, cfg.NodeID, nil); err != nil {
			return fmt.Errorf("gencerts: %w", err)
		}
		fmt.Printf("Certificates generated in %s for node %q\n", gencertsDir, cfg.NodeID)
		return nil
	},
}

func init() {
	gencertsCmd.Flags().StringVar(&gencertsDir, "out", "certs", "output directory for generated certs")
}

// ---- init-genesis ----

var (
	genesisOut     string
	genesisPeers   []string
	genesisExecRef string
)

var initGenesisCmd = &cobra.Command{
	Use:   "init-genesis",
	Short: "author a genesis document from this node's key and config and write it to disk",
	Long: `init-genesis builds a genesis.Document naming this node's validator
key as the sole genesis operator and installing a consensus topology from
--peer entries (each formatted pubkeyhex=host:port). With no --peer flags
the topology is a single entry for this node, suitable for single-node
development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		priv, err := wallet.LoadKey(keyPath, keystorePassword())
		if err != nil {
			return fmt.Errorf("load key: %w", err)
		}

		topology, err := parseTopology(genesisPeers, priv, cfg)
		if err != nil {
			return err
		}

		doc := genesis.Document{
			Chain:        cfg.Genesis.ChainID,
			ExecutorPath: genesisExecRef,
			Instructions: []ledger.Instruction{},
			Topology:     topology,
		}
		data, err := json.MarshalIndent(&doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal genesis document: %w", err)
		}
		out := genesisOut
		if out == "" {
			out = cfg.Genesis.DocumentPath
		}
		if out == "" {
			out = "genesis.json"
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("Genesis document written to %s (chain %q, %d peers)\n", out, doc.Chain, len(topology))
		return nil
	},
}

func init() {
	initGenesisCmd.Flags().StringVar(&genesisOut, "out", "", "output path (defaults to genesis.document_path from config, then ./genesis.json)")
	initGenesisCmd.Flags().StringArrayVar(&genesisPeers, "peer", nil, "pubkeyhex=host:port, repeatable; defaults to this node alone")
	initGenesisCmd.Flags().StringVar(&genesisExecRef, "executor", "builtin", "authorization executor reference installed by the genesis Upgrade instruction")
}

func parseTopology(peers []string, selfKey crypto.PrivateKey, cfg *config.Config) ([]ledger.Peer, error) {
	if len(peers) == 0 {
		return []ledger.Peer{{PublicKey: selfKey.Public().Hex(), Address: fmt.Sprintf(":%d", cfg.P2PPort)}}, nil
	}
	topology := make([]ledger.Peer, 0, len(peers))
	for _, p := range peers {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --peer %q: want pubkeyhex=host:port", p)
		}
		topology = append(topology, ledger.Peer{PublicKey: parts[0], Address: parts[1]})
	}
	return topology, nil
}

// genesisOperator derives the account that authors every genesis
// instruction. Using the validator's own key keeps single-operator
// deployments simple; multi-operator genesis ceremonies would sign this
// differently, which is out of scope here.
func genesisOperator(priv crypto.PrivateKey) ledger.AccountId {
	return ledger.AccountId{Domain: "genesis", Signatory: priv.Public().Hex()}
}

// ---- run ----

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the ledger peer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode()
	},
}

func runNode() error {
	log := newLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	privKey, err := wallet.LoadKey(keyPath, keystorePassword())
	if err != nil {
		return fmt.Errorf("load key: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("mkdir data dir: %w", err)
	}
	db, err := storage.NewLevelDB(cfg.DataDir + "/chain")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	blockStore := storage.NewLevelBlockStore(db)
	chain := blockchain.NewChain(blockStore)
	if err := chain.Init(); err != nil {
		return fmt.Errorf("chain init: %w", err)
	}

	idxDB, err := bolt.Open(cfg.DataDir+"/index.db", 0600, nil)
	if err != nil {
		return fmt.Errorf("open index db: %w", err)
	}
	defer idxDB.Close()

	bus := events.NewBus()
	idx, err := indexer.New(idxDB, bus, log.With().Str("component", "indexer").Logger())
	if err != nil {
		return fmt.Errorf("indexer init: %w", err)
	}
	telemetry.NewTracker(bus)

	world := worldstate.New(cfg.MetadataLimits())
	eng := isi.New()

	if cfg.Genesis.DocumentPath == "" {
		return fmt.Errorf("genesis.document_path must be set")
	}
	doc, err := loadGenesisDocument(cfg.Genesis.DocumentPath)
	if err != nil {
		return fmt.Errorf("load genesis document: %w", err)
	}

	if chain.Tip() == nil {
		operator := genesisOperator(privKey)
		block, err := genesis.Bootstrap(doc, operator, privKey, world, eng, chain, bus, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("genesis bootstrap: %w", err)
		}
		log.Info().Str("hash", block.Hash).Msg("genesis block committed")
	} else {
		// Topology is fixed at genesis and never replayed through the
		// instruction log, so a restarted peer restores it directly from
		// the genesis document before replaying committed blocks.
		world.SetPeers(doc.Topology)
		if err := replayChain(chain, world, eng, bus, log); err != nil {
			return fmt.Errorf("replay chain: %w", err)
		}
	}

	verifier := txverify.SignatureVerifier{}
	lifecycle := txlifecycle.New(eng, verifier, genesisOperator(privKey))
	lifecycle.Limits = cfg.AcceptanceLimits()

	q := queue.New(cfg.QueueRuntimeConfig(), queue.SystemClock{}, nil)
	go reportQueueDepth(ctx, q)

	roundRobin := consensus.New(world, privKey, log.With().Str("component", "consensus").Logger())
	assembler := blockchain.New(world, q, lifecycle, chain, bus, roundRobin, blockchain.SystemClock{}, cfg.Block.MaxBlockTxs)

	tlsCfg, err := config.LoadTLSConfig(cfg.TLS)
	if err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	if tlsCfg != nil {
		log.Info().Msg("mTLS enabled for P2P")
	}

	p2pAddr := fmt.Sprintf(":%d", cfg.P2PPort)
	node := network.NewNode(cfg.NodeID, p2pAddr, q, world, tlsCfg, log.With().Str("component", "p2p").Logger())
	syncer := network.NewSyncer(node, chain, world, eng, bus, func() []ledger.Peer { return world.View().ListPeers() }, log.With().Str("component", "sync").Logger())
	if err := node.Start(); err != nil {
		return fmt.Errorf("p2p start: %w", err)
	}
	defer node.Stop()
	log.Info().Str("addr", p2pAddr).Msg("p2p listening")

	for _, sp := range cfg.SeedPeers {
		if err := node.AddPeer(sp.ID, sp.Addr); err != nil {
			log.Warn().Err(err).Str("peer", sp.ID).Msg("seed peer connect failed")
			continue
		}
		if peer := node.Peer(sp.ID); peer != nil {
			if err := syncer.RequestBlocks(peer, chain.Height()+1); err != nil {
				log.Warn().Err(err).Str("peer", sp.ID).Msg("initial sync request failed")
			}
		}
		log.Info().Str("peer", sp.ID).Str("addr", sp.Addr).Msg("connected to seed peer")
	}

	exec := queryexec.New(nil, chain)
	rpcHandler := rpc.NewHandler(world, q, exec, idx, cfg.Genesis.ChainID)
	rpcAddr := fmt.Sprintf(":%d", cfg.RPCPort)
	rpcServer := rpc.NewServer(rpcAddr, rpcHandler, cfg.RPCAuthToken, log.With().Str("component", "rpc").Logger())
	if err := rpcServer.Start(); err != nil {
		return fmt.Errorf("rpc start: %w", err)
	}
	defer rpcServer.Stop()
	log.Info().Str("addr", rpcAddr).Msg("rpc listening")
	if cfg.RPCAuthToken != "" {
		log.Info().Msg("rpc bearer token authentication enabled")
	}

	metricsAddr := fmt.Sprintf(":%d", cfg.RPCPort+1)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	defer metricsSrv.Close()
	log.Info().Str("addr", metricsAddr).Msg("metrics listening")

	var wg sync.WaitGroup
	wg.Add(1)
	proposeEvery := time.Duration(cfg.Block.ProposeEveryMs) * time.Millisecond
	if proposeEvery <= 0 {
		proposeEvery = 2 * time.Second
	}
	go func() {
		defer wg.Done()
		roundRobin.Run(ctx, proposeEvery, func() error {
			block, err := assembler.ProduceBlock()
			if err != nil {
				return err
			}
			node.BroadcastBlock(block)
			return nil
		})
	}()
	log.Info().Str("validator", privKey.Public().Hex()).Msg("consensus running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	cancel()
	wg.Wait()

	log.Info().Msg("shutdown complete")
	return nil
}

func loadGenesisDocument(path string) (genesis.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return genesis.Document{}, err
	}
	var doc genesis.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return genesis.Document{}, err
	}
	return doc, nil
}

// replayChain re-executes every committed block's accepted transactions
// against a fresh world state, the same way a restarted peer without a
// snapshot recovers its in-memory view from the durable block store.
func replayChain(chain *blockchain.Chain, world *worldstate.World, eng *isi.Engine, bus *events.Bus, log zerolog.Logger) error {
	height := chain.Height()
	for h := int64(1); h <= height; h++ {
		block, err := chain.GetBlockByHeight(h)
		if err != nil {
			return fmt.Errorf("load block %d: %w", h, err)
		}
		// The genesis block (height 1) was executed under the height-0
		// genesis bypass; every later block ran at its own height.
		execHeight := h
		if h == 1 {
			execHeight = 0
		}
		ws := world.Block()
		for _, tx := range block.Accepted {
			for _, instr := range tx.InstructionSet {
				if err := eng.Execute(ws, tx.AuthorityID, execHeight, instr); err != nil {
					log.Warn().Err(err).Str("tx", tx.Hash()).Msg("replay: instruction failed, skipping (already rejected at commit time)")
				}
			}
		}
		world.Commit(ws, bus)
	}
	return nil
}

// reportQueueDepth mirrors the admission queue's length into the
// ledgerd_queue_depth gauge until ctx is cancelled.
func reportQueueDepth(ctx context.Context, q *queue.Queue) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telemetry.SetQueueDepth(q.Len())
		}
	}
}
