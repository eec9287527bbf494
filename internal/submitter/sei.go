package submitter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const defaultSubmitTimeout = 60 * time.Second

type SeiSubmitterConfig struct {
	Contracts Contracts
	Sender    string // Relayer wallet address on Sei
	Fee       FeeSpec

	// FallbackOnQueryError submits anyway when the redemption query fails.
	// The chain rejects duplicates with VaaAlreadyExecuted, so this stays safe.
	FallbackOnQueryError bool

	// RevertSignatures defaults to KnownRevertSignatures
	RevertSignatures []RevertSignature

	SubmitTimeout time.Duration
}

func (c *SeiSubmitterConfig) Validate() error {
	if c.Contracts.TokenBridge == "" {
		return errors.New("token bridge contract address is not set")
	}
	if c.Contracts.Translator == "" {
		return errors.New("token translator contract address is not set")
	}
	if c.Sender == "" {
		return errors.New("sender address is not set")
	}
	return errors.Wrap(c.Fee.Validate(), "invalid fee")
}

// SeiSubmitter completes token bridge transfers on Sei: check, route, submit, classify
type SeiSubmitter struct {
	config     SeiSubmitterConfig
	checker    *RedemptionChecker
	router     *PayloadRouter
	executor   *SubmissionExecutor
	classifier *OutcomeClassifier
	logger     *zap.Logger
}

// NewSeiSubmitter creates a new Sei submitter. querier and executor are owned by the caller.
func NewSeiSubmitter(logger *zap.Logger, config SeiSubmitterConfig, querier WasmQuerier, executor WasmExecutor) (*SeiSubmitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = defaultSubmitTimeout
	}

	return &SeiSubmitter{
		config:     config,
		checker:    NewRedemptionChecker(querier, config.Contracts.TokenBridge),
		router:     NewPayloadRouter(config.Contracts),
		executor:   NewSubmissionExecutor(logger, executor, config.Sender, config.Fee),
		classifier: NewOutcomeClassifier(config.RevertSignatures),
		logger:     logger.With(zap.String("component", "SeiSubmitter")),
	}, nil
}

// Complete runs the completion step once.
// AlreadyRedeemed and Completed return a nil error. Failed returns the cause as error too,
// which is either a *QueryError or an *ExecutionError.
func (s *SeiSubmitter) Complete(ctx context.Context, a *Attestation) (Outcome, error) {
	logger := s.logger.With(zap.String("messageID", a.MessageID))

	redeemed, err := s.checker.IsRedeemed(ctx, a)
	if err != nil {
		if !s.config.FallbackOnQueryError {
			return FailedOutcome(err), err
		}
		logger.Debug("Redemption check failed, submitting anyway", zap.Error(err))
		redeemed = false
	}
	if redeemed {
		return s.classifier.Classify(true, "", nil), nil
	}

	target := s.router.Route(a)
	logger.Debug("Routed VAA",
		zap.Stringer("payloadKind", a.PayloadKind),
		zap.String("contract", target.Contract),
		zap.String("msgKey", target.MsgKey))

	submitCtx, cancel := context.WithTimeout(ctx, s.config.SubmitTimeout)
	defer cancel()

	txHash, execErr := s.executor.Submit(submitCtx, target)

	outcome := s.classifier.Classify(false, txHash, execErr)
	if outcome.Kind == Failed {
		return outcome, outcome.Cause
	}
	return outcome, nil
}
