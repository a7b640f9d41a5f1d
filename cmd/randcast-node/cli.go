package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/config"
	"github.com/bls-tss-network/randcast-node/internal/ctxnode"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   "randcast-node.toml",
	Usage:   "Path to the node's TOML configuration file.",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level.",
}

var metricsFlag = &cli.StringFlag{
	Name:  "metrics",
	Usage: "host:port to serve Prometheus metrics on. Disabled if empty.",
}

// CLI builds the randcast-node app, following the single-binary,
// urfave/cli/v2 shape of cmd/drand-cli.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "randcast-node"
	app.Usage = "participant node for a threshold-BLS randomness beacon network"
	app.Version = version
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("randcast-node %s (date %s, commit %s)\n", version, buildDate, gitCommit)
	}
	app.Commands = []*cli.Command{
		{
			Name:   "start",
			Usage:  "load configuration and deploy the node's coordination fabric",
			Flags:  []cli.Flag{configFlag, verboseFlag, metricsFlag},
			Action: startCmd,
		},
	}
	return app
}

// startCmd loads config, builds every leaf dependency and deploys the
// Context, then blocks until an interrupt or termination signal
// arrives, the way test/full/main.go's setSignal triggers an
// Orchestrator shutdown.
func startCmd(c *cli.Context) error {
	conf, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return err
	}

	level := log.InfoLevel
	if c.Bool(verboseFlag.Name) {
		level = log.DebugLevel
	}
	l := log.New(level)

	selfAddr := common.HexToAddress(conf.IDAddress)

	node := dal.NewNodeCache(types.NodeIdentity{
		IDAddress:   selfAddr,
		RPCEndpoint: conf.NodeRPCEndpoint,
	})

	// Grouping (DKG) is out of scope for this node: the
	// group cache starts empty and is populated by an external
	// grouping component once a round completes. Every listener and
	// handler treats a not-yet-ready group as "nothing to do", so the
	// node idles safely until that happens.
	group := dal.NewGroupCache()

	mainChainClient := chainclient.NewMock(conf.ControllerEndpoint, conf.IDAddress)

	ctx := ctxnode.New(ctxnode.Deps{
		Node:            node,
		Group:           group,
		Core:            bls.NewKyberCore(),
		Share:           nil,
		MainChainClient: mainChainClient,
		MetricsEndpoint: c.String(metricsFlag.Name),
		Logger:          l,
	})

	for _, a := range conf.Adapters {
		adapterClient := chainclient.NewMock(a.Endpoint, a.IDAddress)
		if err := ctx.AddAdapterChain(a.ID, adapterClient); err != nil {
			return fmt.Errorf("randcast-node: adapter %q: %w", a.Name, err)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		s := <-sigc
		l.Info("randcast-node: received signal, shutting down", "signal", s.String())
		cancel()
	}()

	handle, err := ctx.Deploy(runCtx)
	if err != nil {
		return fmt.Errorf("randcast-node: deploy: %w", err)
	}

	l.Info("randcast-node: deployed, waiting for work")
	handle.Wait(runCtx)
	return nil
}
