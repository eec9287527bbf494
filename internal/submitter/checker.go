package submitter

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

type isVAARedeemedQuery struct {
	IsVAARedeemed struct {
		VAA string `json:"vaa"`
	} `json:"is_vaa_redeemed"`
}

type isRedeemedResponse struct {
	IsRedeemed *bool `json:"is_redeemed"`
}

// RedemptionChecker asks the token bridge whether a VAA was already redeemed
type RedemptionChecker struct {
	querier     WasmQuerier
	tokenBridge string
}

func NewRedemptionChecker(querier WasmQuerier, tokenBridge string) *RedemptionChecker {
	return &RedemptionChecker{querier: querier, tokenBridge: tokenBridge}
}

func (c *RedemptionChecker) IsRedeemed(ctx context.Context, a *Attestation) (bool, error) {
	var query isVAARedeemedQuery
	query.IsVAARedeemed.VAA = base64.StdEncoding.EncodeToString(a.VAABytes)

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return false, &QueryError{Contract: c.tokenBridge, Err: err}
	}

	raw, err := c.querier.QueryContractSmart(ctx, c.tokenBridge, queryBytes)
	if err != nil {
		return false, &QueryError{Contract: c.tokenBridge, Err: err}
	}

	var resp isRedeemedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, &QueryError{Contract: c.tokenBridge, Err: errors.Wrap(err, "decode is_vaa_redeemed response")}
	}
	if resp.IsRedeemed == nil {
		return false, &QueryError{
			Contract: c.tokenBridge,
			Err:      errors.Newf("is_redeemed missing from response: %s", raw),
		}
	}

	return *resp.IsRedeemed, nil
}
