package submitter

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// QueryError means the redemption state of a VAA could not be determined.
// The whole completion step should be retried later.
type QueryError struct {
	Contract string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query redemption state on %s: %v", e.Contract, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ExecutionError means the completion transaction was rejected or never broadcast.
// Message is the text the classifier matches against known revert signatures.
type ExecutionError struct {
	Contract string
	Message  string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute on %s: %s", e.Contract, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// newExecutionError wraps err unless it already is an *ExecutionError.
// Context added around a nested *ExecutionError is kept in Message.
func newExecutionError(contract string, err error) *ExecutionError {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		if execErr == err {
			return execErr
		}
		contract = execErr.Contract
	}
	return &ExecutionError{Contract: contract, Message: err.Error(), Err: err}
}

func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
