package submitter

import "context"

// WasmQuerier runs read-only smart queries against CosmWasm contracts.
// It returns the raw JSON the contract answered with.
type WasmQuerier interface {
	QueryContractSmart(ctx context.Context, contract string, query []byte) ([]byte, error)
}

// WasmExecutor signs and broadcasts one MsgExecuteContract and returns its transaction hash
type WasmExecutor interface {
	Execute(ctx context.Context, req ExecuteRequest) (string, error)
}

// ExecuteRequest is everything the signer needs to build a completion transaction
type ExecuteRequest struct {
	Sender   string
	Contract string
	Msg      []byte
	Fee      FeeSpec
	Memo     string
}

// VAACompleter completes a single attestation on the destination chain
type VAACompleter interface {
	Complete(ctx context.Context, a *Attestation) (Outcome, error)
}
