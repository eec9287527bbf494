package internal

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/wormhole-foundation/wormhole/sdk"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wormhole-demo/sei-relayer/internal/clients"
	"github.com/wormhole-demo/sei-relayer/internal/metrics"
	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

type VAAProcessor interface {
	// ProcessVAA completes the given VAA. A nil outcome means the VAA was skipped.
	ProcessVAA(ctx context.Context, vaaData VAAData) (*submitter.Outcome, error)
}

type VAAProcessorConfig struct {
	DestinationChainID uint16 // Only transfers to this chain are completed

	// TokenBridgeEmitters maps a source chain to its token bridge emitter.
	// Defaults to the mainnet token bridges.
	TokenBridgeEmitters map[vaaLib.ChainID][]byte
	// Emitters are accepted in addition to the token bridges
	Emitters []clients.EmitterFilter

	MaxRetries        int // Additional attempts after the first failure
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
	ProcessTimeout    time.Duration // Upper bound for one VAA, retries included

	SubmissionsPerSecond float64 // 0 disables rate limiting
	SubmissionBurst      int

	CompletedCacheSize int // Recently finished VAAs skipped on redelivery
	CompletedCacheTTL  time.Duration
}

func (c *VAAProcessorConfig) setDefaults() {
	if c.DestinationChainID == 0 {
		c.DestinationChainID = uint16(vaaLib.ChainIDSei)
	}
	if c.TokenBridgeEmitters == nil {
		c.TokenBridgeEmitters = sdk.KnownTokenbridgeEmitters
	}
	if c.InitialRetryDelay <= 0 {
		c.InitialRetryDelay = 3 * time.Second
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = time.Minute
	}
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = 10 * time.Minute
	}
	if c.SubmissionBurst <= 0 {
		c.SubmissionBurst = 1
	}
	if c.CompletedCacheSize <= 0 {
		c.CompletedCacheSize = 10000
	}
	if c.CompletedCacheTTL <= 0 {
		c.CompletedCacheTTL = time.Hour
	}
}

type DefaultVAAProcessor struct {
	config    VAAProcessorConfig
	logger    *zap.Logger
	completer submitter.VAACompleter
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	emitters  map[string]struct{}
	completed *expirable.LRU[string, struct{}]

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewDefaultVAAProcessor(logger *zap.Logger, config VAAProcessorConfig, completer submitter.VAACompleter, m *metrics.Metrics) *DefaultVAAProcessor {
	config.setDefaults()

	limiter := rate.NewLimiter(rate.Inf, config.SubmissionBurst)
	if config.SubmissionsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.SubmissionsPerSecond), config.SubmissionBurst)
	}
	if m == nil {
		m = metrics.New()
	}

	emitters := make(map[string]struct{}, len(config.TokenBridgeEmitters)+len(config.Emitters))
	for chain, addr := range config.TokenBridgeEmitters {
		emitters[emitterKey(uint16(chain), hex.EncodeToString(addr))] = struct{}{}
	}
	for _, e := range config.Emitters {
		emitters[emitterKey(e.ChainID, e.EmitterAddress)] = struct{}{}
	}

	return &DefaultVAAProcessor{
		config:    config,
		logger:    logger.With(zap.String("component", "DefaultVAAProcessor")),
		completer: completer,
		metrics:   m,
		limiter:   limiter,
		emitters:  emitters,
		completed: expirable.NewLRU[string, struct{}](config.CompletedCacheSize, nil, config.CompletedCacheTTL),
		inFlight:  make(map[string]struct{}),
	}
}

func emitterKey(chain uint16, emitterHex string) string {
	return fmt.Sprintf("%d/%s", chain, emitterHex)
}

// preFilter accepts transfers addressed to the destination chain and emitted
// by a token bridge or one of the configured emitters
func (p *DefaultVAAProcessor) preFilter(vaaData *VAAData) bool {
	if vaaData.VAA == nil || vaaData.Transfer == nil {
		return false
	}
	if uint16(vaaData.Transfer.TargetChain) != p.config.DestinationChainID {
		return false
	}
	_, ok := p.emitters[emitterKey(vaaData.ChainID, vaaData.EmitterHex)]
	return ok
}

// claim marks key in flight. It fails when the VAA is being processed or was
// recently completed.
func (p *DefaultVAAProcessor) claim(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inFlight[key]; ok || p.completed.Contains(key) {
		return false
	}
	p.inFlight[key] = struct{}{}
	return true
}

func (p *DefaultVAAProcessor) release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, key)
}

func (p *DefaultVAAProcessor) ProcessVAA(ctx context.Context, vaaData VAAData) (*submitter.Outcome, error) {
	if len(vaaData.RawBytes) == 0 {
		p.logger.Error("Received a VAA but no signed VAA bytes, skipping",
			zap.String("messageID", vaaData.MessageID()))
		p.metrics.VAAReceived(metrics.ResultInvalid)
		return nil, nil
	}

	if !p.preFilter(&vaaData) {
		p.logger.Debug("Skipping VAA (not a token bridge transfer to the destination chain)",
			zap.Uint16("chain", vaaData.ChainID),
			zap.String("emitter", vaaData.EmitterHex),
			zap.Uint64("sequence", vaaData.Sequence))
		p.metrics.VAAReceived(metrics.ResultFiltered)
		return nil, nil
	}

	key := computeVAAKey(vaaData.VAA)
	if !p.claim(key) {
		p.logger.Debug("Skipping VAA (in flight or recently completed)", zap.String("messageID", vaaData.MessageID()))
		p.metrics.VAAReceived(metrics.ResultDuplicate)
		return nil, nil
	}
	defer p.release(key)
	p.metrics.VAAReceived(metrics.ResultAccepted)

	LogVAAFull(p.logger, &vaaData)

	ctx, cancel := context.WithTimeout(ctx, p.config.ProcessTimeout)
	defer cancel()

	outcome, err := p.completeWithRetry(ctx, vaaData.Attestation())
	if err != nil {
		p.logger.Error("Failed to complete VAA",
			zap.String("messageID", vaaData.MessageID()),
			zap.Error(err))
		return &outcome, err
	}

	p.completed.Add(key, struct{}{})

	switch outcome.Kind {
	case submitter.Completed:
		p.logger.Info("Submitted complete transfer to Sei",
			zap.String("messageID", vaaData.MessageID()),
			zap.String("txHash", outcome.TxHash))
	case submitter.AlreadyRedeemed:
		p.logger.Info("VAA to Sei seen but already redeemed, skipping",
			zap.String("messageID", vaaData.MessageID()))
	}

	return &outcome, nil
}

// completeWithRetry reruns the whole completion step, redemption check included,
// until it produces a non-error outcome or runs out of attempts.
func (p *DefaultVAAProcessor) completeWithRetry(ctx context.Context, a *submitter.Attestation) (submitter.Outcome, error) {
	retryDelay := p.config.InitialRetryDelay
	maxAttempts := p.config.MaxRetries + 1

	var (
		outcome submitter.Outcome
		err     error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return submitter.FailedOutcome(err), errors.Wrap(err, "waiting for submission slot")
		}

		start := time.Now()
		outcome, err = p.completer.Complete(ctx, a)
		p.metrics.CompletionAttempt(outcome.Kind.String(), time.Since(start))
		if err == nil {
			return outcome, nil
		}
		if submitter.IsQueryError(err) {
			p.metrics.QueryError()
		}

		// The transaction may still land; the next attempt re-checks redemption first
		if ctx.Err() != nil {
			p.logger.Warn("Completion cancelled or timed out", zap.Error(ctx.Err()))
			return outcome, errors.Wrap(err, "completion interrupted")
		}

		if attempt == maxAttempts {
			break
		}

		p.logger.Warn("Completion attempt failed, retrying",
			zap.String("messageID", a.MessageID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Duration("nextRetry", retryDelay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return outcome, errors.Wrap(err, "completion interrupted")
		case <-time.After(retryDelay):
			retryDelay = retryDelay * 3 / 2
			if retryDelay > p.config.MaxRetryDelay {
				retryDelay = p.config.MaxRetryDelay
			}
		}
	}

	return outcome, errors.Wrapf(err, "giving up after %d attempts", maxAttempts)
}
