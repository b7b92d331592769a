// Command roundengined is a single-node demo driver for consensus/round:
// it boots one RoundLayer from a roundconfig file, feeds its emitted
// events back through a round.EventQueue (mirroring consensus/bft.go's
// runRound select loop, but delegating every transition to RoundLayer
// instead of inlining the state machine), and checkpoints each successful
// round's candidate to roundstore.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"nhbchain/consensus/round"
	"nhbchain/consensus/round/roundconfig"
	"nhbchain/consensus/round/roundstore"
	"nhbchain/consensus/round/sigcap"
	"nhbchain/observability/logging"
	telemetry "nhbchain/observability/otel"
	"nhbchain/storage"
)

func main() {
	configFile := flag.String("config", "./round.toml", "Path to the round engine configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("NHB_ENV"))
	logger := logging.Setup("roundengined", env)

	cfg, err := roundconfig.Load(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	otlpEndpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	insecure := true
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			insecure = parsed
		}
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "roundengined",
		Environment: env,
		Endpoint:    otlpEndpoint,
		Insecure:    insecure,
		Traces:      true,
	})
	if err != nil {
		logger.Error("failed to initialise telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()
	tracer := otel.Tracer("roundengined")

	key, err := cfg.SigningKey()
	if err != nil {
		logger.Error("failed to load signing key", slog.Any("error", err))
		os.Exit(1)
	}
	capability := sigcap.New(key)

	validators, err := cfg.ValidatorAddresses()
	if err != nil {
		logger.Error("failed to decode validator set", slog.Any("error", err))
		os.Exit(1)
	}
	if len(validators) == 0 {
		// Single-node demo: this node is its own validator set of one.
		validators = [][]byte{capability.Address()}
	}
	epoch := round.NewEpoch(cfg.EpochNumber, validators)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	store := roundstore.New(db)

	candidate, err := store.LoadCandidate(cfg.EpochNumber)
	if err != nil {
		// No checkpoint yet: start from an empty genesis candidate.
		genesis := round.Data{Kind: round.DataNormal, Number: 0}
		candidate = round.Candidate{Data: &genesis, Votes: nil}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := round.NewEventQueue()
	layer := round.NewRoundLayer(capability.Address(), queue, capability, capability, logger, round.Metrics())

	if err := layer.Initialize(ctx, nil, epoch, cfg.StartRound, *candidate.Data, candidate.Votes); err != nil {
		logger.Error("failed to initialize round layer", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("round engine started", slog.Uint64("epoch", epoch.Num), slog.Uint64("round", cfg.StartRound))
	runLoop(ctx, logger, tracer, layer, queue, store, epoch, cfg.StartRound)
	logger.Info("round engine shutting down")
}

// runLoop is the driver's single goroutine event loop: it wakes on
// queue.Notify(), drains every queued event, and dispatches each one,
// mirroring consensus/bft.go's runRound select loop but delegating every
// transition to layer instead of inlining the state machine.
// ReceiveData/ReceiveVote events are routed back into ProposeData/VoteData,
// closing the loopback spec.md requires; a successful round's candidate is
// checkpointed, and every round end starts the next round.
func runLoop(ctx context.Context, logger *slog.Logger, tracer trace.Tracer, layer *round.RoundLayer, queue *round.EventQueue, store *roundstore.Store, epoch round.Epoch, startRound uint64) {
	round_ := startRound
	for {
		select {
		case <-ctx.Done():
			return
		case <-queue.Notify():
			for _, event := range queue.Drain() {
				switch e := event.(type) {
				case round.BroadcastDataEvent:
					logger.Debug("broadcast data", slog.Uint64("number", e.Data.Number))
				case round.BroadcastVoteEvent:
					logger.Debug("broadcast vote", slog.String("kind", voteKindString(e.Vote.Kind)))
				case round.ReceiveDataEvent:
					spanCtx, span := tracer.Start(ctx, "round.propose_data")
					layer.ProposeData(spanCtx, e.Data)
					span.End()
				case round.ReceiveVoteEvent:
					spanCtx, span := tracer.Start(ctx, "round.vote_data")
					layer.VoteData(spanCtx, e.Vote)
					span.End()
				case round.ChangedCandidateEvent:
					logger.Info("candidate changed", slog.Uint64("round", e.Data.RoundNum))
				case round.RoundEndEvent:
					if e.IsSuccess {
						data := e.CandidateData
						candidate := round.Candidate{Data: &data, Votes: e.CandidateVotes}
						if err := store.SaveCandidate(epoch.Num, candidate); err != nil {
							logger.Error("failed to checkpoint candidate", slog.Any("error", err))
						}
					}
					logger.Info("round ended", slog.Bool("success", e.IsSuccess), slog.Uint64("round", e.RoundNum))
					round_ = e.RoundNum + 1
					if err := layer.RoundStart(ctx, epoch, round_); err != nil {
						logger.Error("failed to start next round", slog.Any("error", err))
						return
					}
				}
			}
		}
	}
}

func voteKindString(k round.VoteKind) string {
	switch k {
	case round.VoteAffirmative:
		return "affirmative"
	case round.VoteNot:
		return "not"
	default:
		return "none"
	}
}
