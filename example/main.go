// The example command shows the intended wiring: suites register
// themselves from init functions, the entry point hands the raw
// command line to selftest.Run, and start-up proceeds only when the
// run policy says so.
//
// Try it with:
//
//	go run ./example --logPasses --randomTestSeed 42 --quitAfterTests
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/log"

	"github.com/treetop-labs/selftest"
	"github.com/treetop-labs/selftest/service"
)

func main() {
	log.SetDefault(log.NewLogger(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc := service.New(service.DefaultConfig())
	svc.Start(ctx)
	defer svc.Shutdown()

	ok := selftest.Run(ctx, strings.Join(os.Args[1:], " "), selftest.Config{
		Mode:     selftest.ModeDebug,
		OnResult: svc.SetResult,
	})
	if !ok {
		return
	}

	log.Info("application starting")
	<-ctx.Done()
	log.Info("application stopping")
}
