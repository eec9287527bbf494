package submitter

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// PayloadKind classifies the token bridge payload carried by a VAA
type PayloadKind uint8

const (
	PlainTransfer PayloadKind = iota + 1
	TransferWithInstructions
)

func (k PayloadKind) String() string {
	switch k {
	case PlainTransfer:
		return "PlainTransfer"
	case TransferWithInstructions:
		return "TransferWithInstructions"
	default:
		return fmt.Sprintf("PayloadKind(%d)", uint8(k))
	}
}

// Attestation is a signed VAA already accepted by the pre-filter.
// It is owned by the caller and never modified here.
type Attestation struct {
	VAABytes         []byte         // Signed VAA bytes as gossiped by the guardians
	DestinationChain vaaLib.ChainID // Target chain from the token bridge payload
	PayloadKind      PayloadKind
	Payload          []byte // Raw token bridge payload
	MessageID        string // chain/emitter/sequence, for logs only
}

// SubmissionTarget is the contract and execute message chosen for an attestation
type SubmissionTarget struct {
	Contract string
	MsgKey   string
	Msg      json.RawMessage
	Memo     string
}

// FeeSpec is the fixed fee attached to every completion transaction
type FeeSpec struct {
	Amount   string // Amount in minor units, e.g. "3500000"
	Denom    string // e.g. "usei"
	GasLimit uint64
	Granter  string // Optional fee granter address
}

func (f FeeSpec) Validate() error {
	if f.Amount == "" {
		return errors.New("fee amount is not set")
	}
	if f.Denom == "" {
		return errors.New("fee denom is not set")
	}
	if f.GasLimit == 0 {
		return errors.New("gas limit must be greater than zero")
	}
	return nil
}

func (f FeeSpec) String() string {
	if f.Granter == "" {
		return fmt.Sprintf("%s%s (gas %d)", f.Amount, f.Denom, f.GasLimit)
	}
	return fmt.Sprintf("%s%s (gas %d, granter %s)", f.Amount, f.Denom, f.GasLimit, f.Granter)
}

type OutcomeKind uint8

const (
	Completed OutcomeKind = iota + 1
	AlreadyRedeemed
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case AlreadyRedeemed:
		return "already_redeemed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one completion attempt.
// TxHash is only set for Completed, Cause only for Failed.
type Outcome struct {
	Kind   OutcomeKind
	TxHash string
	Cause  error
}

func CompletedOutcome(txHash string) Outcome {
	return Outcome{Kind: Completed, TxHash: txHash}
}

func AlreadyRedeemedOutcome() Outcome {
	return Outcome{Kind: AlreadyRedeemed}
}

func FailedOutcome(cause error) Outcome {
	return Outcome{Kind: Failed, Cause: cause}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Completed:
		return fmt.Sprintf("completed (tx %s)", o.TxHash)
	case Failed:
		return fmt.Sprintf("failed: %v", o.Cause)
	default:
		return o.Kind.String()
	}
}
