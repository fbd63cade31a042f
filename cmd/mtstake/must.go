// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mtstake/builtin/staking"
	"github.com/vechain/mtstake/genesis"
	"github.com/vechain/mtstake/kv"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/lvldb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
)

// maxClockOffset is the local clock drift tolerated before warning.
const maxClockOffset = 30 * time.Second

// stateBucket holds contract storage inside the main database.
const stateBucket = kv.Bucket("state.")

type logLevels struct {
	root    *slog.LevelVar
	staking *slog.LevelVar
}

func initLogger(ctx *cli.Context) *logLevels {
	levels := &logLevels{root: new(slog.LevelVar), staking: new(slog.LevelVar)}
	levels.root.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))
	levels.staking.Set(log.FromLegacyLevel(ctx.Int(verbosityStakingFlag.Name)))

	output := io.Writer(os.Stdout)
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"

	format := log.FormatTerminal
	if ctx.Bool(jsonLogsFlag.Name) {
		format = log.FormatJSON
	}
	newHandler := func(level *slog.LevelVar) slog.Handler {
		return log.NewHandler(output, level, format, useColor)
	}
	log.SetDefault(log.NewLogger(newHandler(levels.root)))
	staking.SetLogger(log.NewLogger(newHandler(levels.staking)).With("pkg", "staking"))
	return levels
}

// selectGenesis loads the genesis named by the genesis flag. Solo mode falls back to devnet.
func selectGenesis(ctx *cli.Context, solo bool) (*genesis.Genesis, error) {
	value := ctx.String(genesisFlag.Name)
	switch value {
	case "":
		if solo {
			return genesis.NewDevnet(), nil
		}
		return nil, errors.New("genesis flag not specified")
	case "devnet":
		return genesis.NewDevnet(), nil
	}

	cfg, err := genesis.LoadConfig(value)
	if err != nil {
		return nil, errors.WithMessage(err, "load genesis file")
	}
	gene, err := genesis.NewCustomNet(cfg)
	if err != nil {
		return nil, errors.WithMessage(err, "build genesis")
	}
	return gene, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	id := mts.Blake2b([]byte(gene.Name()))
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id.Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
		return sizeMB
	}
	return limitCacheSize(sizeMB, int(mem.Total/1024/1024))
}

// limitCacheSize caps the cache to what the host can spare out of totalMB of physical ram.
func limitCacheSize(sizeMB, totalMB int) int {
	limitMB := max(totalMB-2048, totalMB/2)
	if sizeMB > limitMB {
		logger.Warn("cache size(MB) limited", "limit", limitMB)
		return limitMB
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openLogDB(ctx *cli.Context, dataDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

// initRuntime opens the runtime and applies the genesis on first start.
func initRuntime(ctx *cli.Context, gene *genesis.Genesis, mainDB *lvldb.LevelDB, logDB *logdb.LogDB, clock runtime.Clock) (*runtime.Runtime, error) {
	opts := runtime.Options{Clock: clock}
	if !ctx.Bool(skipLogsFlag.Name) {
		opts.LogDB = logDB
	}
	rt, err := runtime.New(stateBucket.NewStore(mainDB), opts)
	if err != nil {
		return nil, errors.WithMessage(err, "open runtime")
	}
	bootstrapped, err := rt.Bootstrapped()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if !bootstrapped {
		if err := rt.Bootstrap(gene.Apply); err != nil {
			rt.Close()
			return nil, errors.WithMessage(err, "apply genesis")
		}
		logger.Info("genesis applied", "name", gene.Name())
	}
	return rt, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// watchClockOffset compares the local clock with an NTP server every hour.
func watchClockOffset(ctx context.Context, server string) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		checkClockOffset(server)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

func printStartupMessage(genesisName string, rt *runtime.Runtime, dataDir, apiURL string) {
	callNum, _ := rt.CallNumber()
	fmt.Printf(`Starting %v
    Genesis      [ %v ]
    Calls        [ %v ]
    Clock        [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		"MTStake "+fullVersion(),
		genesisName,
		callNum,
		time.Unix(int64(rt.Clock().Now()), 0),
		dataDir,
		apiURL)
}

func printSoloStartupMessage(genesisName string, rt *runtime.Runtime, dataDir, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	callNum, _ := rt.CallNumber()
	info := fmt.Sprintf(`Starting %v
    Genesis     [ %v ]
    Calls       [ %v ]
    Clock       [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		"MTStake solo "+fullVersion(),
		genesisName,
		callNum,
		time.Unix(int64(rt.Clock().Now()), 0),
		dataDir,
		apiURL)

	var b strings.Builder
	b.WriteString(info)
	b.WriteString(tableHead)
	for _, a := range genesis.DevAccounts() {
		fmt.Fprintf(&b, tableContent,
			a.Address,
			mts.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	b.WriteString(tableEnd + "\r\n")

	fmt.Print(b.String())
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch goruntime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.mtstake")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.mtstake")
		default:
			return filepath.Join(home, ".org.vechain.mtstake")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
