package internal

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// computeVAAKey keys a VAA on its body digest, so copies carrying different
// guardian signature sets share one key
func computeVAAKey(v *vaaLib.VAA) string {
	return hex.EncodeToString(v.SigningDigest().Bytes())
}

// NormalizeEmitterAddress removes the 0x prefix, lowercases and left-pads to 32 bytes
func NormalizeEmitterAddress(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(addr), "0x"))
	if len(addr) > 64 {
		return "", errors.Newf("emitter address too long: %d hex chars", len(addr))
	}
	if _, err := hex.DecodeString(strings.Repeat("0", len(addr)%2) + addr); err != nil {
		return "", errors.Wrapf(err, "invalid emitter address %q", addr)
	}
	return strings.Repeat("0", 64-len(addr)) + addr, nil
}
