// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package protocol

import (
	"time"

	"go.uber.org/zap"

	"github.com/plumio/econet/config"
	"github.com/plumio/econet/frame"
	"github.com/plumio/econet/structures"
)

// Option configures a Dispatcher. Follows the functional-options pattern
// used throughout this module's transport layer.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	connectTimeout time.Duration
	reconnectDelay time.Duration
	version        structures.VersionInfo
	network        structures.NetworkInfo
	writeQueueSize int
}

func defaultOptions() options {
	return options{
		logger:         zap.NewNop(),
		connectTimeout: 5 * time.Second,
		reconnectDelay: time.Duration(config.DefaultDispatcher.ReconnectDelayS) * time.Second,
		version:        structures.NewVersionInfo("1.0.0", frame.AddressMaster),
		writeQueueSize: 256,
	}
}

// WithLogger sets the dispatcher's structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithConnectTimeout bounds a single connection attempt (spec §4.3.5).
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithReconnectDelay overrides the fixed delay between reconnect attempts
// (spec §4.3.5 and §9, default 20s).
func WithReconnectDelay(d time.Duration) Option {
	return func(o *options) { o.reconnectDelay = d }
}

// WithVersionInfo sets the program-version payload this master answers
// REQUEST_PROGRAM_VERSION with.
func WithVersionInfo(v structures.VersionInfo) Option {
	return func(o *options) { o.version = v }
}

// WithNetworkInfo sets the network-status payload this master answers
// REQUEST_CHECK_DEVICE with.
func WithNetworkInfo(n structures.NetworkInfo) Option {
	return func(o *options) { o.network = n }
}

// WithWriteQueueSize overrides the outgoing frame queue's buffer depth.
func WithWriteQueueSize(n int) Option {
	return func(o *options) { o.writeQueueSize = n }
}
