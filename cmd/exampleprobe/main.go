// Command exampleprobe is a minimal host program demonstrating the probe
// library: it registers a single "ping" check and runs until interrupted.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	oversightprobe "github.com/marmos91/oversightprobe"
	"github.com/marmos91/oversightprobe/internal/checkerr"
	"github.com/marmos91/oversightprobe/internal/logger"
	"github.com/marmos91/oversightprobe/internal/model"
	"github.com/marmos91/oversightprobe/internal/scheduler"
)

func pingCheck(ctx context.Context, asset model.AssetHandle, assetConfig map[string]string, checkConfig map[string]any) (any, error) {
	host, ok := assetConfig["host"]
	if !ok {
		return nil, checkerr.NewCheckError("asset config missing \"host\"", model.SeverityHigh)
	}

	start := time.Now()
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "80"))
	if err != nil {
		return nil, checkerr.NewCheckError(err.Error(), model.SeverityMedium)
	}
	defer conn.Close()

	return map[string]any{
		"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func main() {
	logger.SetLevel("INFO")

	catalog := scheduler.Catalog{
		"ping": pingCheck,
	}

	probe := oversightprobe.New("exampleprobe", "1.0.0", catalog)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go probe.Start()

	<-ctx.Done()
	logger.Info("shutting down")
	probe.Close()
}
