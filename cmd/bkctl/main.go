package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Station-Manager/bk178x"
)

func main() {
	configPath := flag.String("config", "", "YAML config file; flags override its values")
	device := flag.String("device", "/dev/ttyUSB0", "serial device path")
	baud := flag.Int("baud", bk178x.DefaultBaudRate.Int(), "baud rate")
	addr := flag.Uint("addr", 0, "device address (0-255)")
	timeout := flag.Duration("timeout", bk178x.DefaultReplyTimeout, "reply timeout per command")
	cmd := flag.String("cmd", "", "single command to send, e.g. \"voltage 12000\"; if empty, read commands from stdin")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "also write logs to this file, rotated")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")

	flag.Parse()

	logger := newLogger(*logLevel, *logFile)

	cfg := bk178x.Config{}
	if *configPath != "" {
		loaded, err := bk178x.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("load config")
		}
		cfg = *loaded
	}

	// explicit flags win over the file; defaults only fill gaps
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["device"] || cfg.PortName == "" {
		cfg.PortName = *device
	}
	if set["baud"] || cfg.BaudRate == 0 {
		cfg.BaudRate = *baud
	}
	if set["addr"] {
		if *addr > 255 {
			logger.Fatal().Uint("addr", *addr).Msg("address out of range")
		}
		cfg.Address = uint8(*addr)
	}
	if set["timeout"] || cfg.ReplyTimeout == 0 {
		cfg.ReplyTimeout = *timeout
	}

	dev, err := bk178x.Open(cfg, bk178x.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.PortName).Msg("open")
	}
	defer dev.Close()

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, dev, logger)
	}

	if *cmd != "" {
		// Single command mode
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ReplyTimeout+time.Second)
		defer cancel()

		if err := runLine(ctx, dev, *cmd); err != nil {
			logger.Error().Err(err).Str("status", bk178x.StatusOf(err).String()).Msg("command failed")
			dev.Close()
			os.Exit(1)
		}
		fmt.Println("OK")
		return
	}

	// Interactive mode: read commands from stdin line by line.
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "Entering interactive mode. Ctrl+D to exit.")
	fmt.Fprintln(os.Stderr, commandHelp)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Error().Err(err).Msg("stdin")
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ReplyTimeout+time.Second)
		err := runLine(ctx, dev, line)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if errors.Is(err, bk178x.ErrClosed) {
				return
			}
			continue
		}
		fmt.Println("OK")
	}
}

func newLogger(level, file string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	if file != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func serveMetrics(addr string, dev *bk178x.Device, logger zerolog.Logger) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(bk178x.NewCollector(dev.Metrics(), prometheus.Labels{
		"addr": fmt.Sprint(dev.Address()),
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
}
