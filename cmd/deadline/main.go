package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deadline-game/deadline-server/internal/catalog"
	"github.com/deadline-game/deadline-server/internal/config"
	"github.com/deadline-game/deadline-server/internal/game"
	"github.com/deadline-game/deadline-server/internal/netplay"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting deadline",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Bool("host", cfg.Server.Host),
	)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	peer, err := connectPeer(ctx, cfg.Server, logger)
	if err != nil {
		logger.Fatal("failed to establish peer link", zap.Error(err))
	}
	defer peer.Close()

	syncCtx, syncCancel := context.WithTimeout(ctx, cfg.Server.SyncTimeout)
	g, err := game.New(syncCtx, cat, game.Options{
		PlayerName:   cfg.Server.PlayerName,
		OpponentName: cfg.Server.OpponentName,
		IsFirst:      cfg.Server.Host,
		Peer:         peer,
		Logger:       logger,
	})
	syncCancel()
	if err != nil {
		logger.Fatal("failed to construct game", zap.Error(err))
	}

	if err := run(ctx, g, peer, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("match aborted", zap.Error(err))
	}
}

func connectPeer(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (netplay.Peer, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if cfg.Host {
		return netplay.Host(connectCtx, cfg.ListenAddr, logger)
	}
	return netplay.Dial(connectCtx, cfg.PeerURL, logger)
}

// run alternates between the local player's turn (commands from stdin,
// mirrored to the peer) and the remote turn (action echoes applied to
// the local engine) until a terminal outcome.
func run(ctx context.Context, g *game.Game, peer netplay.Peer, logger *zap.Logger) error {
	stdin := bufio.NewScanner(os.Stdin)
	myTurn := g.PlayerPID() == 1 // the first player opens the match

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var outcome game.Outcome
		var err error
		if myTurn {
			outcome, err = localTurn(g, peer, stdin)
		} else {
			outcome, err = remoteTurn(ctx, g, peer, logger)
		}
		if err != nil {
			return err
		}
		if outcome != game.OutcomeNone {
			fmt.Printf("Match over: %s\n", outcome)
			return nil
		}
		myTurn = !myTurn
	}
}

// localTurn runs one turn driven from stdin. Every applied action is
// echoed to the peer so the remote engine replays it.
func localTurn(g *game.Game, peer netplay.Peer, stdin *bufio.Scanner) (game.Outcome, error) {
	if err := g.TurnBegin(); err != nil {
		return game.OutcomeNone, err
	}
	pid := g.PlayerPID()
	printSnapshot(g)

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			peer.Send(netplay.QuitMessage())
			return game.OutcomeNone, errors.New("stdin closed")
		}
		fields := strings.Fields(stdin.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "take":
			if res := g.CanTakeCard(pid); !res.OK {
				fmt.Println(res.Reason)
				continue
			}
			if err := g.TakeCard(pid); err != nil {
				fmt.Println(err)
				continue
			}
			peer.Send(netplay.TakeCardMessage())

		case "use":
			idx, target, ok := parseUse(fields, g)
			if !ok {
				continue
			}
			if err := g.UseCard(pid, idx, target); err != nil {
				fmt.Println(err)
				continue
			}
			peer.Send(netplay.UseCardMessage(idx, target))

		case "work":
			if len(fields) != 3 {
				fmt.Println("usage: work <deadline> <hours>")
				continue
			}
			idx, err1 := strconv.Atoi(fields[1])
			hours, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				fmt.Println("usage: work <deadline> <hours>")
				continue
			}
			if res := g.CanSpendTime(pid, idx, hours); !res.OK {
				fmt.Println(res.Reason)
				continue
			}
			if err := g.SpendTime(pid, idx, hours); err != nil {
				fmt.Println(err)
				continue
			}
			peer.Send(netplay.WorkMessage(idx, hours))

		case "state":
			printSnapshot(g)

		case "end":
			outcome, err := g.TurnEnd()
			if err != nil {
				return game.OutcomeNone, err
			}
			peer.Send(netplay.EndTurnMessage())
			return outcome, nil

		case "quit":
			peer.Send(netplay.QuitMessage())
			return game.OutcomeNone, errors.New("player quit")

		default:
			fmt.Println("commands: take | use <hand> [target] | work <deadline> <hours> | state | end | quit")
		}
	}
}

// remoteTurn applies the peer's action echoes against the opponent seat
// until its end_turn arrives.
func remoteTurn(ctx context.Context, g *game.Game, peer netplay.Peer, logger *zap.Logger) (game.Outcome, error) {
	pid := g.OpponentPID()
	for {
		msg, err := peer.Next(ctx)
		if err != nil {
			return game.OutcomeNone, fmt.Errorf("peer link: %w", err)
		}
		switch msg.Action {
		case netplay.ActionTakeCard:
			err = g.TakeCard(pid)
		case netplay.ActionUseCard:
			var idx, target int
			if idx, target, err = msg.UseCardPayload(); err == nil {
				err = g.UseCard(pid, idx, target)
			}
		case netplay.ActionWork:
			var idx, hours int
			if idx, hours, err = msg.WorkPayload(); err == nil {
				err = g.SpendTime(pid, idx, hours)
			}
		case netplay.ActionEndTurn:
			return game.OutcomeNone, nil
		case netplay.ActionQuit:
			return game.OutcomeNone, errors.New("opponent left the match")
		default:
			logger.Warn("ignoring unexpected peer message", zap.String("action", msg.Action))
		}
		if err != nil {
			// The two engines have diverged; the trust assumption is broken
			// and the match cannot continue.
			return game.OutcomeNone, fmt.Errorf("applying remote %s: %w", msg.Action, err)
		}
	}
}

func parseUse(fields []string, g *game.Game) (idx, target int, ok bool) {
	if len(fields) < 2 || len(fields) > 3 {
		fmt.Println("usage: use <hand> [target]")
		return 0, 0, false
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Println("usage: use <hand> [target]")
		return 0, 0, false
	}
	target = game.NoTarget
	if len(fields) == 3 {
		if target, err = strconv.Atoi(fields[2]); err != nil {
			fmt.Println("usage: use <hand> [target]")
			return 0, 0, false
		}
	}
	if res := g.CanUseCard(g.PlayerPID(), mustCardAt(g, idx)); !res.OK {
		fmt.Println(res.Reason)
		return 0, 0, false
	}
	return idx, target, true
}

func mustCardAt(g *game.Game, idx int) catalog.CardID {
	card, err := g.CardAt(g.PlayerPID(), idx)
	if err != nil {
		return ""
	}
	return card.ID
}

func printSnapshot(g *game.Game) {
	snap := g.Snapshot()
	fmt.Printf("day %d | you: %d pts, %d/%d hours | opponent: %d pts, %d cards | deck: %d\n",
		snap.Global.Day, snap.Player.Score, snap.Player.FreeHours, snap.Player.HoursToday,
		snap.Opponent.Score, snap.Opponent.HandSize, snap.Global.DeckSize)
	for i, cid := range snap.Player.Hand {
		card := g.Catalog().Cards[cid]
		fmt.Printf("  hand[%d] %s (%s, %s)\n", i, card.Name, card.Kind, card.ValidTarget)
	}
	for i, d := range snap.Player.Deadlines {
		fmt.Printf("  deadline[%d] %s %d/%d due day %d\n",
			i, d.TaskID, d.Progress, d.Progress+d.RemainingHours, d.DueDay)
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
