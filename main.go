package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"BaroServer/bmp180"
)

type ProgramArgs struct {
	// Server Options
	Host string `short:"H" long:"host" default:"127.0.0.1" description:"IP to listen on"`
	Port uint16 `short:"P" long:"port" default:"27315" description:"Port to listen on"`

	// Sensor Options
	Interval  uint16 `short:"I" long:"interval" default:"1" description:"Interval between readings in seconds"`
	I2CDevice string `short:"D" long:"i2cdev" description:"The used I2C device (default: auto)"`
	Mode      string `short:"M" long:"mode" default:"standard" description:"Oversampling mode (ulp, std, hr, uhr)"`

	// Logging Options
	LogLevel string `long:"log-level" default:"info" description:"Log level (debug, info, warn, error)"`
	Env      string `long:"env" default:"dev" choice:"dev" choice:"prod" description:"dev logs human readable text, prod logs JSON"`

	// MQTT Options
	MQTTBroker   string `long:"mqtt-broker" description:"MQTT broker host, publishing is disabled when empty"`
	MQTTPort     uint16 `long:"mqtt-port" default:"1883" description:"MQTT broker port"`
	MQTTClientID string `long:"mqtt-client-id" default:"baroserver" description:"MQTT client ID"`
	MQTTTopic    string `long:"mqtt-topic" default:"sensors/bmp180/reading" description:"MQTT topic readings are published to"`
}

const (
	appName = "baroserver"

	HectoPascal = 100 // Pa

	MIN_TIMEOUT_SECONDS = 2
)

func getOutboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP
}

// setupSensor returns an initialized session. The caller has the
// responsibility to halt it.
func setupSensor(args ProgramArgs, logger *slog.Logger) (*bmp180.Dev, error) {
	mode, err := bmp180.ParseMode(args.Mode)
	if err != nil {
		return nil, err
	}
	dev := bmp180.New(bmp180.OpenI2C(args.I2CDevice, bmp180.Address), &bmp180.Opts{
		Mode:   mode,
		Logger: logger,
	})
	if err := dev.Init(); err != nil {
		return nil, err
	}

	id, err := dev.ChipID()
	if err != nil {
		dev.Halt()
		return nil, err
	}
	cal, err := dev.Calibration()
	if err != nil {
		logger.Warn("couldn't read back calibration", "error", err)
	}
	logger.Info("sensor ready", "dev", dev.String(), "chip_id", fmt.Sprintf("0x%02X", id), "mode", mode, "calibration", cal.String())
	return dev, nil
}

// validateArgs rejects option values go-flags cannot check on its own.
func validateArgs(args ProgramArgs) error {
	if args.Interval == 0 {
		return fmt.Errorf("invalid interval %d (must be at least 1 second)", args.Interval)
	}
	if _, err := bmp180.ParseMode(args.Mode); err != nil {
		return err
	}
	return nil
}

func main() {
	args := ProgramArgs{}
	argParser := flags.NewParser(&args, flags.Default)
	if _, err := argParser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := validateArgs(args); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	level, err := parseLogLevel(args.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(os.Stdout, args.Env, level)
	slog.SetDefault(logger)

	if err := run(args, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(args ProgramArgs, logger *slog.Logger) error {
	dev, err := setupSensor(args, logger)
	if err != nil {
		return fmt.Errorf("couldn't initialize sensor: %w", err)
	}
	defer dev.Halt()

	var pub publisher
	if args.MQTTBroker != "" {
		m := newMQTTPublisher(args.MQTTBroker, args.MQTTPort, args.MQTTClientID, args.MQTTTopic, logger)
		m.Connect()
		defer m.Disconnect()
		pub = m
	}

	// SIGKILL and SIGQUIT are not caught.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPoller(dev, time.Duration(args.Interval)*time.Second, pub, logger)
	pollErr := make(chan error, 1)
	go func() { pollErr <- p.run(ctx) }()

	timeoutLen := max(MIN_TIMEOUT_SECONDS, int(args.Interval))

	addr := net.JoinHostPort(args.Host, fmt.Sprint(args.Port))
	srv := &http.Server{
		Addr:         addr,
		ReadTimeout:  time.Duration(timeoutLen) * time.Second,
		WriteTimeout: time.Duration(timeoutLen) * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      newRouter(p, dev, logger),
	}

	if args.Host == "0.0.0.0" {
		if ip := getOutboundIP(); ip != nil { // resolve local IP for easier debugging
			logger.Info("listening", "addr", net.JoinHostPort(ip.String(), fmt.Sprint(args.Port)))
		}
	} else {
		logger.Info("listening", "addr", addr)
	}
	srvErr := startServer(srv)

	err = waitForExit(ctx, pollErr, srvErr)

	// Give the server a timeout period of 4 seconds
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	return err
}

// startServer runs srv in the background. The channel receives the error
// that stopped it, unless it was stopped by Shutdown.
func startServer(srv *http.Server) <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server stopped: %w", err)
		}
	}()
	return errc
}

// waitForExit blocks until a signal arrives or the poller or server stops.
// Only a signal yields context.Canceled.
func waitForExit(ctx context.Context, pollErr, srvErr <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-pollErr:
		return err
	case err := <-srvErr:
		return err
	}
}
