package bitcoin

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/goodnatureofminers/opreturn-indexer/internal/clock"
	lndclock "github.com/lightningnetwork/lnd/clock"
	"go.uber.org/zap"
)

const (
	hashBlockTopic = "hashblock"

	defaultReconnectDelay = 10 * time.Second
)

// BlockSignal turns the node's ZMQ hashblock notifications into wake-ups for
// a follow-mode scanner. Signals are coalesced: a slow consumer sees at most
// one pending wake-up.
type BlockSignal struct {
	address        string
	reconnectDelay time.Duration
	clock          lndclock.Clock
	logger         *zap.Logger
	newSocket      func(ctx context.Context) zmq4.Socket
	signals        chan struct{}
}

// NewBlockSignal creates a subscriber for address, e.g. tcp://127.0.0.1:28332.
func NewBlockSignal(address string, logger *zap.Logger) *BlockSignal {
	return &BlockSignal{
		address:        address,
		reconnectDelay: defaultReconnectDelay,
		clock:          lndclock.NewDefaultClock(),
		logger:         logger.Named("zmq"),
		newSocket: func(ctx context.Context) zmq4.Socket {
			return zmq4.NewSub(ctx, zmq4.WithID(zmq4.SocketIdentity("opreturn-scanner")))
		},
		signals: make(chan struct{}, 1),
	}
}

// Signals returns the wake-up channel.
func (b *BlockSignal) Signals() <-chan struct{} {
	return b.signals
}

// Run receives notifications until ctx is done, reconnecting after failures.
func (b *BlockSignal) Run(ctx context.Context) error {
	for {
		err := b.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("zmq session ended, reconnecting",
			zap.String("address", b.address),
			zap.Duration("delay", b.reconnectDelay),
			zap.Error(err),
		)
		if err := clock.Sleep(ctx, b.clock, b.reconnectDelay); err != nil {
			return err
		}
	}
}

func (b *BlockSignal) session(ctx context.Context) error {
	socket := b.newSocket(ctx)
	defer func() {
		if err := socket.Close(); err != nil {
			b.logger.Debug("close zmq socket", zap.Error(err))
		}
	}()

	if err := socket.Dial(b.address); err != nil {
		return err
	}
	if err := socket.SetOption(zmq4.OptionSubscribe, hashBlockTopic); err != nil {
		return err
	}
	b.logger.Info("subscribed to block notifications", zap.String("address", b.address))

	for {
		msg, err := socket.Recv()
		if err != nil {
			return err
		}
		if len(msg.Frames) < 2 || string(msg.Frames[0]) != hashBlockTopic {
			continue
		}
		b.logger.Debug("block notification", zap.String("hash", hex.EncodeToString(msg.Frames[1])))
		select {
		case b.signals <- struct{}{}:
		default:
		}
	}
}
