package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/survey-intake/cliparse"
	"github.com/danielhkuo/survey-intake/db"
	"github.com/danielhkuo/survey-intake/handlers"
	"github.com/danielhkuo/survey-intake/logging"
	"github.com/danielhkuo/survey-intake/middleware"
	"github.com/danielhkuo/survey-intake/router"
	"github.com/danielhkuo/survey-intake/store"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(os.Stderr, cfg.LogLevel); err != nil {
		slog.Error("Error configuring logging", "error", err)
		os.Exit(1)
	}

	var sink store.Sink
	var diag handlers.Diagnoser

	if cfg.HasDatabase() {
		dbConn, err := db.Open(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		sqlSink, err := store.NewSQLSink(dbConn, cfg.DatabaseType)
		if err != nil {
			slog.Error("sink creation failed", "error", err)
			os.Exit(1)
		}

		// An unreachable database is reported by /__diag and per request,
		// not fatal at startup. The sink creates the table on first use.
		prepareDatabase(dbConn, sqlSink)
		sink, diag = sqlSink, sqlSink
		slog.Info("Storing submissions in database", "type", cfg.DatabaseType, "render_tls", cfg.Render)
	} else {
		fileSink, err := store.OpenJSONL(cfg.ResponsesFile)
		if err != nil {
			slog.Error("responses file unavailable", "error", err)
			os.Exit(1)
		}
		defer fileSink.Close()
		sink = fileSink
		slog.Info("Storing submissions in file", "path", fileSink.Path())
	}

	// Create router
	mux := router.NewRouter(cfg, sink, diag)

	// Create server
	server := http.Server{
		Handler:      middleware.CORS(mux),
		Addr:         ":" + strconv.Itoa(cfg.Port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	// Start server
	slog.Info("Server listening", "port", cfg.Port)
	if err := serve(&server, ln, ctrlc, shutdownTimeout); err != nil {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server closed")
}

const shutdownTimeout = 10 * time.Second

// serve runs server on ln until stop fires. It returns only after Shutdown
// has drained in-flight requests, so the sinks closed by main's defers are
// never closed under a running handler.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// prepareDatabase pings the database and creates the responses table
func prepareDatabase(conn *sql.DB, sink *store.SQLSink) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		slog.Warn("database ping failed", "error", err)
		return
	}

	if err := sink.EnsureSchema(ctx); err != nil {
		slog.Warn("schema creation failed, retrying on first submission", "error", err)
		return
	}
	slog.Info("Database schema ready")
}
