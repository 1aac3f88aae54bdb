package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dunebench/engine/internal/agent"
	"github.com/dunebench/engine/pkg/dune"
)

func main() {
	url := flag.String("url", "http://localhost:3009", "server base URL")
	agentName := flag.String("agent", "random", "agent provider (hold, random)")
	turnDuration := flag.Duration("turn-duration", 10*time.Second, "turn duration for the game")
	seed := flag.Int64("seed", 1, "random seed for the random agent")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var provider dune.AgentProvider
	switch *agentName {
	case "hold":
		provider = agent.HoldAgent{}
	default:
		provider = agent.RandomAgent{Rand: rand.New(rand.NewSource(*seed))}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	orch := agent.NewOrchestrator(*url, provider, *turnDuration)
	if err := orch.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("agent orchestrator failed")
	}
	log.Info().Msg("agent game completed successfully")
}
