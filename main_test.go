package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    ProgramArgs
		wantErr bool
	}{
		{name: "defaults", args: ProgramArgs{Interval: 1, Mode: "standard"}},
		{name: "long interval", args: ProgramArgs{Interval: 60, Mode: "uhr"}},
		{name: "zero interval", args: ProgramArgs{Interval: 0, Mode: "standard"}, wantErr: true},
		{name: "bad mode", args: ProgramArgs{Interval: 1, Mode: "turbo"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartServer_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	select {
	case err := <-startServer(srv):
		if err == nil {
			t.Fatal("server error = nil, want bind error")
		}
	case <-time.After(5 * time.Second):
		srv.Close()
		t.Fatal("server did not fail on a bound address")
	}
}

func TestWaitForExit(t *testing.T) {
	bindErr := errors.New("listen tcp 127.0.0.1:27315: bind: address already in use")

	t.Run("server error", func(t *testing.T) {
		srvErr := make(chan error, 1)
		srvErr <- bindErr
		err := waitForExit(context.Background(), make(chan error), srvErr)
		if !errors.Is(err, bindErr) {
			t.Fatalf("waitForExit() = %v, want the server error", err)
		}
		if errors.Is(err, context.Canceled) {
			t.Error("server failure reported as a clean shutdown")
		}
	})

	t.Run("poller error", func(t *testing.T) {
		pollErr := make(chan error, 1)
		pollErr <- bindErr
		if err := waitForExit(context.Background(), pollErr, make(chan error)); !errors.Is(err, bindErr) {
			t.Fatalf("waitForExit() = %v, want the poller error", err)
		}
	})

	t.Run("signal", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := waitForExit(ctx, make(chan error), make(chan error)); !errors.Is(err, context.Canceled) {
			t.Fatalf("waitForExit() = %v, want context.Canceled", err)
		}
	})
}
