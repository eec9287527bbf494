package submitter

import (
	"context"

	"go.uber.org/zap"
)

// SubmissionExecutor sends one completion transaction with the configured fee.
// It never retries.
type SubmissionExecutor struct {
	executor WasmExecutor
	sender   string
	fee      FeeSpec
	logger   *zap.Logger
}

func NewSubmissionExecutor(logger *zap.Logger, executor WasmExecutor, sender string, fee FeeSpec) *SubmissionExecutor {
	return &SubmissionExecutor{
		executor: executor,
		sender:   sender,
		fee:      fee,
		logger:   logger.With(zap.String("component", "SubmissionExecutor")),
	}
}

// Submit returns the transaction hash, or an *ExecutionError carrying the chain's message
func (e *SubmissionExecutor) Submit(ctx context.Context, target SubmissionTarget) (string, error) {
	e.logger.Debug("Executing completion message",
		zap.String("contract", target.Contract),
		zap.String("msgKey", target.MsgKey),
		zap.Stringer("fee", e.fee))

	txHash, err := e.executor.Execute(ctx, ExecuteRequest{
		Sender:   e.sender,
		Contract: target.Contract,
		Msg:      target.Msg,
		Fee:      e.fee,
		Memo:     target.Memo,
	})
	if err != nil {
		return "", newExecutionError(target.Contract, err)
	}

	return txHash, nil
}
