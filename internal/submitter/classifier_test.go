package submitter

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewOutcomeClassifier(nil)

	require.Equal(t, AlreadyRedeemedOutcome(), c.Classify(true, "", nil))
	// Executor results are irrelevant once the VAA is known to be redeemed
	require.Equal(t, AlreadyRedeemedOutcome(), c.Classify(true, "ABC123", errors.New("boom")))
	require.Equal(t, CompletedOutcome("ABC123"), c.Classify(false, "ABC123", nil))

	insufficient := &ExecutionError{Contract: testTokenBridge, Message: "insufficient funds"}
	outcome := c.Classify(false, "", insufficient)
	require.Equal(t, Failed, outcome.Kind)
	require.Equal(t, insufficient, outcome.Cause)
}

func TestClassifyIsTotal(t *testing.T) {
	c := NewOutcomeClassifier(nil)

	messages := []string{
		"",
		"insufficient funds",
		"VaaAlreadyExecuted",
		"Generic error: VaaAlreadyExecuted: execute wasm contract failed",
		"vaaalreadyexecuted",
		"account sequence mismatch, expected 12, got 11",
		"rpc error: code = Unavailable desc = connection refused",
		"out of gas in location: wasm contract; gasWanted: 1000000",
	}
	for _, msg := range messages {
		outcome := c.Classify(false, "", &ExecutionError{Message: msg})
		require.Contains(t, []OutcomeKind{AlreadyRedeemed, Failed}, outcome.Kind, msg)
	}

	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", &ExecutionError{Message: "VaaAlreadyExecuted"}).Kind)
	// Matching is case sensitive, like the contract error name
	require.Equal(t, Failed, c.Classify(false, "", &ExecutionError{Message: "vaaalreadyexecuted"}).Kind)
}

func TestClassifyWrappedErrors(t *testing.T) {
	c := NewOutcomeClassifier(nil)

	inner := &ExecutionError{Message: "VaaAlreadyExecuted"}
	wrapped := fmt.Errorf("broadcast: %w", inner)
	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", wrapped).Kind)

	plain := errors.New("tx failed: VaaAlreadyExecuted")
	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", plain).Kind)
}

func TestClassifyCustomSignatures(t *testing.T) {
	c := NewOutcomeClassifier([]RevertSignature{
		{Chain: "sei", Signature: "VaaAlreadyExecuted"},
		{Chain: "other", Signature: "AlreadyCompleted"},
		{Chain: "empty", Signature: ""},
	})

	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", errors.New("AlreadyCompleted")).Kind)
	// An empty signature must not match everything
	require.Equal(t, Failed, c.Classify(false, "", errors.New("insufficient funds")).Kind)
}

func TestClassifyMatchesWrappingContext(t *testing.T) {
	c := NewOutcomeClassifier(nil)

	// The revert only appears in the text around the nested *ExecutionError
	inner := &ExecutionError{Contract: testTokenBridge, Message: "broadcast rejected"}
	wrapped := errors.Wrap(inner, "Generic error: VaaAlreadyExecuted")
	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", wrapped).Kind)
	require.Equal(t, AlreadyRedeemed, c.Classify(false, "", newExecutionError(testTokenBridge, wrapped)).Kind)
}
