package internal

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// transferPayload builds a token bridge transfer payload (id 1 or 3)
func transferPayload(payloadType uint8, targetChain vaaLib.ChainID) []byte {
	p := make([]byte, 133)
	p[0] = payloadType
	p[32] = 100 // amount, big-endian uint256 in bytes 1..32
	p[64] = 0xaa
	binary.BigEndian.PutUint16(p[65:67], uint16(vaaLib.ChainIDEthereum))
	p[98] = 0xbb
	binary.BigEndian.PutUint16(p[99:101], uint16(targetChain))
	return p
}

// ethTokenBridge is the mainnet token bridge emitter on Ethereum
const ethTokenBridge = "0000000000000000000000003ee18b2214aff97000d974cf647e7c347e8fa585"

func emitterAddress(t *testing.T, hexAddr string) vaaLib.Address {
	t.Helper()
	b, err := hex.DecodeString(hexAddr)
	require.NoError(t, err)
	require.Len(t, b, 32)
	var addr vaaLib.Address
	copy(addr[:], b)
	return addr
}

// testVAA is an unsigned Ethereum token bridge VAA carrying payload
func testVAA(t *testing.T, sequence uint64, payload []byte) *vaaLib.VAA {
	t.Helper()
	return &vaaLib.VAA{
		Version:          1,
		GuardianSetIndex: 4,
		Timestamp:        time.Unix(1700000000, 0),
		Nonce:            7,
		Sequence:         sequence,
		ConsistencyLevel: 1,
		EmitterChain:     vaaLib.ChainIDEthereum,
		EmitterAddress:   emitterAddress(t, ethTokenBridge),
		Payload:          payload,
	}
}

func marshalVAA(t *testing.T, v *vaaLib.VAA) []byte {
	t.Helper()
	b, err := v.Marshal()
	require.NoError(t, err)
	return b
}

func signedVAA(t *testing.T, sequence uint64, payload []byte) []byte {
	t.Helper()
	return marshalVAA(t, testVAA(t, sequence, payload))
}

func parseBytes(t *testing.T, b []byte) VAAData {
	t.Helper()
	data, err := ParseVAA(b)
	require.NoError(t, err)
	return *data
}

func parsedVAA(t *testing.T, sequence uint64, payload []byte) VAAData {
	t.Helper()
	return parseBytes(t, signedVAA(t, sequence, payload))
}
