package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/amterp/memmap/internal/api"
	"github.com/amterp/ra"
)

const shutdownTimeout = 10 * time.Second

func registerServe(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("serve")
	cmd.SetDescription("Start the HTTP API")

	ctx.ServeHost, _ = ra.NewString("host").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Host to bind (default: server.host from config)").
		Register(cmd)

	ctx.ServePort, _ = ra.NewInt("port").
		SetOptional(true).
		SetDefault(0).
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Port to listen on (will try incrementally if in use; default: server.port from config)").
		Register(cmd)

	ctx.ServeNoWatch, _ = ra.NewBool("no-watch").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Don't push data directory changes to websocket clients").
		Register(cmd)

	ctx.ServeUsed, _ = parent.RegisterCmd(cmd)
}

func runServe(configPath, host string, port int, noWatch bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	handler, err := api.NewHandler(&api.AppContext{
		Paths:        app.Paths,
		Engine:       app.Engine,
		Contributors: app.Contributors,
		Memories:     app.Memories,
		Members:      app.Members,
		Uploads:      app.Uploads,
		ColorDoctor:  app.ColorDoctor,
		Logger:       app.Logger,
		Metrics:      app.Metrics,
	})
	if err != nil {
		Fatal(err)
	}

	if host == "" {
		host = app.Config.Server.Host
	}
	if port == 0 {
		port = app.Config.Server.Port
	}
	actualPort := findAvailablePort(host, port)

	server := api.NewServer(handler, api.ServerOptions{
		Host:     host,
		Port:     actualPort,
		Watch:    app.Config.Server.Watch && !noWatch,
		Gatherer: app.Registry,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess("memmap API running at %s", RenderURL(fmt.Sprintf("http://%s", server.Addr())))
	PrintInfo("Data directory: %s", app.Paths.DataDir())
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			Fatal(err)
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("shutdown failed", "error", err)
	}
	if err := <-errCh; err != nil {
		app.Logger.Error("server stopped with error", "error", err)
	}
	PrintInfo("Stopped")
}

// findAvailablePort tries ports starting from startPort until it finds one that's available.
func findAvailablePort(host string, startPort int) int {
	maxAttempts := 100
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if isPortAvailable(host, port) {
			return port
		}
	}
	// If we couldn't find a port after maxAttempts, return the original and let it fail naturally
	return startPort
}

// isPortAvailable checks if a port is available by attempting to listen on it.
func isPortAvailable(host string, port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
