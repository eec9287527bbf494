package submitter

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// RevertSignature is a fragment of an on-chain error meaning the VAA was
// already executed by someone else.
type RevertSignature struct {
	Chain     string
	Signature string
}

// KnownRevertSignatures lists every revert that means "already redeemed".
// Add an entry here when a new destination reports duplicates differently.
var KnownRevertSignatures = []RevertSignature{
	{Chain: "sei", Signature: "VaaAlreadyExecuted"},
}

// OutcomeClassifier maps the result of a completion attempt to an Outcome
type OutcomeClassifier struct {
	signatures []RevertSignature
}

func NewOutcomeClassifier(signatures []RevertSignature) *OutcomeClassifier {
	if signatures == nil {
		signatures = KnownRevertSignatures
	}
	return &OutcomeClassifier{signatures: signatures}
}

// Classify never returns an Outcome other than Completed, AlreadyRedeemed or Failed.
// When priorRedeemed is set the executor result is ignored.
func (c *OutcomeClassifier) Classify(priorRedeemed bool, txHash string, execErr error) Outcome {
	if priorRedeemed {
		return AlreadyRedeemedOutcome()
	}
	if execErr == nil {
		return CompletedOutcome(txHash)
	}
	if c.alreadyExecuted(execErr) {
		return AlreadyRedeemedOutcome()
	}
	return FailedOutcome(execErr)
}

func (c *OutcomeClassifier) alreadyExecuted(err error) bool {
	messages := []string{err.Error()}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		messages = append(messages, ee.Message)
	}
	for _, sig := range c.signatures {
		if sig.Signature == "" {
			continue
		}
		for _, msg := range messages {
			if strings.Contains(msg, sig.Signature) {
				return true
			}
		}
	}
	return false
}
