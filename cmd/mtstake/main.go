// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mtstake/api/admin/health"
	"github.com/vechain/mtstake/cmd/mtstake/httpserver"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/lvldb"
	"github.com/vechain/mtstake/metrics"
	"github.com/vechain/mtstake/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Version:   fullVersion(),
		Name:      "mtstake",
		Usage:     "Multi-asset tiered staking ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			verbosityFlag,
			verbosityStakingFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "ledger with an adjustable clock for test & dev",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLogsLimitFlag,
					apiSlowQueriesThresholdFlag,
					enableAPILogsFlag,
					skipLogsFlag,
					verbosityFlag,
					verbosityStakingFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					persistFlag,
				},
				Action: soloAction,
			},
		},
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	gene, err := selectGenesis(ctx, false)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openLogDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	rt, err := initRuntime(ctx, gene, mainDB, logDB, runtime.SystemClock{})
	if err != nil {
		return err
	}
	defer rt.Close()

	return serve(ctx, rt, logDB, logLevel, serveOptions{
		genesisName: gene.Name(),
		instanceDir: instanceDir,
		ntpServer:   ctx.String(ntpServerFlag.Name),
	})
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	gene, err := selectGenesis(ctx, true)
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		if logDB, err = openLogDB(ctx, instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return errors.Wrap(err, "open main database")
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return errors.Wrap(err, "open log database")
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	rt, err := initRuntime(ctx, gene, mainDB, logDB, runtime.NewSoloClock(nil))
	if err != nil {
		return err
	}
	defer rt.Close()

	return serve(ctx, rt, logDB, logLevel, serveOptions{
		genesisName: gene.Name(),
		instanceDir: instanceDir,
		solo:        true,
	})
}

type serveOptions struct {
	genesisName string
	instanceDir string
	ntpServer   string
	solo        bool
}

// serve runs the API, and optionally the metrics and admin servers, until an exit signal.
func serve(ctx *cli.Context, rt *runtime.Runtime, logDB *logdb.LogDB, logLevel *logLevels, opts serveOptions) error {
	exitCtx := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		logger.Info("metrics server started", "url", url)
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	h := health.New(rt, logDB)
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel.root, h, &apiLogs)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		logger.Info("admin server started", "url", url)
	}

	handler, closeSubs := httpserver.NewAPIHandler(rt, logDB, httpserver.APIOptions{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		Timeout:         time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond,
		SlowQueries:     time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		SkipLogs:        ctx.Bool(skipLogsFlag.Name),
		SoloMode:        opts.solo,
		SubsCacheSize:   100,
		GenesisName:     opts.genesisName,
		EnableReqLogger: &apiLogs,
	})
	apiURL, closeAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		closeSubs()
		return err
	}
	defer func() { logger.Info("stopping API server..."); closeSubs(); closeAPI() }()

	if opts.solo {
		printSoloStartupMessage(opts.genesisName, rt, opts.instanceDir, apiURL)
	} else {
		printStartupMessage(opts.genesisName, rt, opts.instanceDir, apiURL)
	}

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		h.Watch(gctx.Done())
		return nil
	})
	if opts.ntpServer != "" {
		g.Go(func() error {
			watchClockOffset(gctx, opts.ntpServer)
			return nil
		})
	}
	return g.Wait()
}
