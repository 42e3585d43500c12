// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package protocol_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/protocol"
	"github.com/plumio/econet/transport"
)

// Property 13: Shutdown stops the dispatcher's run loop and closes the
// active connection.
func TestDispatcherShutdownStopsRun(t *testing.T) {
	srv, cli := net.Pipe()
	defer srv.Close()

	dial := func(ctx context.Context) (transport.Transport, error) {
		return cli, nil
	}
	d := protocol.NewDispatcher(dial)

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(context.Background()) }()

	// Give the dispatcher a moment to connect and start its session.
	time.Sleep(50 * time.Millisecond)

	d.Shutdown()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	// The dispatcher's side of the pipe must have been closed; the server
	// side now observes that immediately instead of blocking forever.
	srv.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	_, err := srv.Read(buf)
	require.Error(t, err)

	// Idempotent: a second Shutdown must not panic or block.
	d.Shutdown()
}

// Property 14: after a connection error, the dispatcher reconnects by
// re-invoking dial.
func TestDispatcherReconnects(t *testing.T) {
	var dialCount int32

	dial := func(ctx context.Context) (transport.Transport, error) {
		n := atomic.AddInt32(&dialCount, 1)
		_, cli := net.Pipe()
		if n == 1 {
			cli.Close() // first connection is already dead; reads fail immediately
		}
		return cli, nil
	}

	d := protocol.NewDispatcher(dial, protocol.WithReconnectDelay(20*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_ = d.Run(ctx)
	d.Shutdown()

	require.GreaterOrEqual(t, atomic.LoadInt32(&dialCount), int32(2))
}
