package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sciencecorp/synapse-cpp/internal/deviceclient"
)

// deviceFlags are the connection flags shared by every subcommand
// that talks to a device. A zero value on any field means "fall back
// to the loaded config file's default", applied by resolve.
type deviceFlags struct {
	host    string
	port    int
	timeout time.Duration
}

func (f *deviceFlags) resolve() (host string, port int, timeout time.Duration) {
	host, port, timeout = f.host, f.port, f.timeout
	if appConfig == nil {
		return host, port, timeout
	}
	if host == "" {
		host = appConfig.Device.Host
	}
	if port == 0 {
		port = appConfig.Device.Port
	}
	if timeout == 0 {
		timeout = time.Duration(appConfig.Device.TimeoutMs) * time.Millisecond
	}
	return host, port, timeout
}

func dialDevice(ctx context.Context, host string, port int, timeout time.Duration) (*deviceclient.Device, error) {
	transport := newTCPTransport()
	addr := fmt.Sprintf("%s:%d", host, port)
	dev := deviceclient.New(transport, addr)

	connectCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		connectCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	st := dev.Connect(connectCtx)
	if appLogger != nil {
		appLogger.LogOperation("connect", addr, st.Ok(), float64(time.Since(start).Microseconds())/1000.0, string(st.Code), statusErr(st))
	}
	if !st.Ok() {
		return nil, fmt.Errorf("connect to %s: %v", addr, st)
	}
	return dev, nil
}

func statusErr(st interface{ Ok() bool }) error {
	if st.Ok() {
		return nil
	}
	return fmt.Errorf("%v", st)
}
