package internal

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

// Token bridge payload ids
const (
	payloadTransfer            uint8 = 1
	payloadTransferWithPayload uint8 = 3
)

// ParseVAA parses signed VAA bytes and, when the payload is a token bridge
// transfer, its transfer header. Non-transfer payloads are not an error.
func ParseVAA(vaaBytes []byte) (*VAAData, error) {
	if len(vaaBytes) == 0 {
		return nil, errors.New("empty VAA bytes")
	}

	v, err := vaaLib.Unmarshal(vaaBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse VAA")
	}

	data := &VAAData{
		VAA:        v,
		RawBytes:   vaaBytes,
		ChainID:    uint16(v.EmitterChain),
		EmitterHex: hex.EncodeToString(v.EmitterAddress[:]),
		Sequence:   v.Sequence,
	}

	if isTokenTransfer(v.Payload) {
		hdr, err := vaaLib.DecodeTransferPayloadHdr(v.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode transfer payload")
		}
		data.Transfer = hdr
	}

	return data, nil
}

func isTokenTransfer(payload []byte) bool {
	return len(payload) > 0 && (payload[0] == payloadTransfer || payload[0] == payloadTransferWithPayload)
}

// DecodeVAAString accepts a signed VAA as hex (with or without 0x) or base64
func DecodeVAAString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty VAA string")
	}

	hexStr := strings.TrimPrefix(s, "0x")
	if b, err := hex.DecodeString(hexStr); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return nil, errors.New("VAA is neither hex nor base64")
}

// LogVAAFull logs all fields of a VAA for debugging
func LogVAAFull(logger *zap.Logger, data *VAAData) {
	v := data.VAA
	fields := []zap.Field{
		zap.Uint8("version", v.Version),
		zap.Uint32("guardianSetIndex", v.GuardianSetIndex),
		zap.Int("signatureCount", len(v.Signatures)),
		zap.Time("timestamp", v.Timestamp),
		zap.Uint32("nonce", v.Nonce),
		zap.Uint64("sequence", v.Sequence),
		zap.Uint8("consistencyLevel", v.ConsistencyLevel),
		zap.Stringer("emitterChain", v.EmitterChain),
		zap.String("emitterAddress", data.EmitterHex),
		zap.Int("payloadLength", len(v.Payload)),
		zap.Int("rawBytesLength", len(data.RawBytes)),
	}
	if t := data.Transfer; t != nil {
		fields = append(fields,
			zap.Uint8("payloadType", t.Type),
			zap.String("amount", t.Amount.String()),
			zap.Stringer("originChain", t.OriginChain),
			zap.String("originAddress", fmt.Sprintf("%x", t.OriginAddress[:])),
			zap.Stringer("targetChain", t.TargetChain),
			zap.String("targetAddress", fmt.Sprintf("%x", t.TargetAddress[:])),
		)
	}
	logger.Debug("VAA details", fields...)
}
