package submitter

import (
	"encoding/base64"
	"encoding/json"
)

// Execute message keys accepted by the Sei contracts
const (
	MsgKeySubmitVAA                  = "submit_vaa"
	MsgKeyCompleteTransferAndConvert = "complete_transfer_and_convert"

	memoCompleteTransfer           = "Wormhole - Complete Transfer"
	memoCompleteTranslatorTransfer = "Wormhole - Complete Token Translator Transfer"
)

type submitVAAMsg struct {
	SubmitVAA struct {
		Data string `json:"data"`
	} `json:"submit_vaa"`
}

type completeTransferAndConvertMsg struct {
	CompleteTransferAndConvert struct {
		VAA string `json:"vaa"`
	} `json:"complete_transfer_and_convert"`
}

// Contracts holds the two possible completion destinations on Sei
type Contracts struct {
	TokenBridge string // Wormhole token bridge, accepts submit_vaa and is_vaa_redeemed
	Translator  string // Token translator, accepts complete_transfer_and_convert
}

// PayloadRouter picks the destination contract for an attestation
type PayloadRouter struct {
	contracts Contracts
}

func NewPayloadRouter(contracts Contracts) *PayloadRouter {
	return &PayloadRouter{contracts: contracts}
}

// Route is deterministic: payload 3 transfers go through the translator,
// everything else is submitted straight to the token bridge.
func (r *PayloadRouter) Route(a *Attestation) SubmissionTarget {
	encoded := base64.StdEncoding.EncodeToString(a.VAABytes)

	if a.PayloadKind == TransferWithInstructions {
		var msg completeTransferAndConvertMsg
		msg.CompleteTransferAndConvert.VAA = encoded
		return SubmissionTarget{
			Contract: r.contracts.Translator,
			MsgKey:   MsgKeyCompleteTransferAndConvert,
			Msg:      mustMarshal(msg),
			Memo:     memoCompleteTranslatorTransfer,
		}
	}

	var msg submitVAAMsg
	msg.SubmitVAA.Data = encoded
	return SubmissionTarget{
		Contract: r.contracts.TokenBridge,
		MsgKey:   MsgKeySubmitVAA,
		Msg:      mustMarshal(msg),
		Memo:     memoCompleteTransfer,
	}
}

// Only used with the fixed message structs above, which always marshal.
func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
