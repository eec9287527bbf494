package internal

import (
	"context"
	"time"

	spyv1 "github.com/certusone/wormhole/node/pkg/proto/spy/v1"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// VAASource delivers signed VAAs, normally the guardian spy
type VAASource interface {
	SubscribeSignedVAA(ctx context.Context) (spyv1.SpyRPCService_SubscribeSignedVAAClient, error)
	Close()
}

const defaultResubscribeDelay = 5 * time.Second

type Relayer struct {
	source           VAASource
	vaaProcessor     VAAProcessor
	maxConcurrent    int
	resubscribeDelay time.Duration
	logger           *zap.Logger
}

// NewRelayer creates a new relayer instance
func NewRelayer(logger *zap.Logger, source VAASource, processor VAAProcessor, maxConcurrent int) (*Relayer, error) {
	if source == nil {
		return nil, errors.New("VAA source is required")
	}
	if processor == nil {
		return nil, errors.New("VAA processor is required")
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Relayer{
		logger:           logger.With(zap.String("component", "Relayer")),
		source:           source,
		vaaProcessor:     processor,
		maxConcurrent:    maxConcurrent,
		resubscribeDelay: defaultResubscribeDelay,
	}, nil
}

// Close cleans up resources used by the relayer
func (r *Relayer) Close() {
	r.source.Close()
}

// Start begins listening for VAAs and processing them until ctx is cancelled
func (r *Relayer) Start(ctx context.Context) error {
	stream, err := r.source.SubscribeSignedVAA(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribe to VAA stream")
	}

	r.logger.Info("Listening for VAAs", zap.Int("maxConcurrent", r.maxConcurrent))

	// In-flight VAAs are cancelled on shutdown, never silently dropped mid-queue
	processingCtx, cancelProcessing := context.WithCancel(context.Background())
	defer cancelProcessing()

	workers := pool.New().WithMaxGoroutines(r.maxConcurrent)
	shutdown := func() {
		cancelProcessing()
		r.logger.Info("Waiting for all VAA processing to complete")
		workers.Wait()
		r.logger.Info("Shutdown complete")
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("Shutting down relayer")
				shutdown()
				return nil
			}

			r.logger.Warn("Stream error, resubscribing", zap.Error(err), zap.Duration("retryIn", r.resubscribeDelay))
			select {
			case <-ctx.Done():
				shutdown()
				return nil
			case <-time.After(r.resubscribeDelay):
			}

			stream, err = r.source.SubscribeSignedVAA(ctx)
			if err != nil {
				shutdown()
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "subscribe to VAA stream after retry")
			}
			continue
		}

		workers.Go(func() {
			r.processVAA(processingCtx, resp.VaaBytes)
		})
	}
}

func (r *Relayer) processVAA(ctx context.Context, vaaBytes []byte) {
	select {
	case <-ctx.Done():
		r.logger.Debug("Processing cancelled for VAA")
		return
	default:
	}

	vaaData, err := ParseVAA(vaaBytes)
	if err != nil {
		r.logger.Error("Failed to parse VAA", zap.Error(err))
		return
	}

	r.logger.Debug("Processing VAA",
		zap.Uint16("chain", vaaData.ChainID),
		zap.Uint64("sequence", vaaData.Sequence),
		zap.String("emitter", vaaData.EmitterHex))

	if _, err := r.vaaProcessor.ProcessVAA(ctx, *vaaData); err != nil {
		r.logger.Error("Error processing VAA", zap.String("messageID", vaaData.MessageID()), zap.Error(err))
	}
}
