package internal

import (
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

type VAAData struct {
	VAA        *vaaLib.VAA                // The parsed VAA
	RawBytes   []byte                     // Signed VAA bytes
	ChainID    uint16                     // Source chain ID
	EmitterHex string                     // Hex-encoded emitter address
	Sequence   uint64                     // VAA sequence number
	Transfer   *vaaLib.TransferPayloadHdr // Token bridge transfer header, nil for other payloads
}

// MessageID returns chain/emitter/sequence
func (d *VAAData) MessageID() string {
	if d.VAA == nil {
		return ""
	}
	return d.VAA.MessageID()
}

// Attestation converts an accepted transfer VAA into the completion input
func (d *VAAData) Attestation() *submitter.Attestation {
	a := &submitter.Attestation{
		VAABytes:    d.RawBytes,
		PayloadKind: submitter.PlainTransfer,
		MessageID:   d.MessageID(),
	}
	if d.VAA != nil {
		a.Payload = d.VAA.Payload
	}
	if d.Transfer != nil {
		a.DestinationChain = d.Transfer.TargetChain
		if d.Transfer.Type == payloadTransferWithPayload {
			a.PayloadKind = submitter.TransferWithInstructions
		}
	}
	return a
}
