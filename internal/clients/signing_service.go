package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type StdFee struct {
	Amount  []Coin `json:"amount"`
	Gas     string `json:"gas"`
	Granter string `json:"granter,omitempty"`
}

type ExecuteRequest struct {
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Fee      StdFee          `json:"fee"`
	Memo     string          `json:"memo,omitempty"`
}

type ExecuteResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Code    uint32 `json:"code,omitempty"`
	RawLog  string `json:"rawLog,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SigningServiceClient hands MsgExecuteContract requests to the wallet service
// that holds the relayer key, signs and broadcasts them.
type SigningServiceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSigningServiceClient(logger *zap.Logger, baseURL string) *SigningServiceClient {
	return &SigningServiceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With(zap.String("component", "SigningServiceClient")),
	}
}

// Execute signs and broadcasts one execute message. On rejection the returned error
// contains the chain's raw log so the caller can recognise known reverts.
func (c *SigningServiceClient) Execute(ctx context.Context, req submitter.ExecuteRequest) (string, error) {
	c.logger.Debug("Sending execute request to signing service",
		zap.String("contract", req.Contract),
		zap.Int("msgLength", len(req.Msg)))

	payload := ExecuteRequest{
		Sender:   req.Sender,
		Contract: req.Contract,
		Msg:      req.Msg,
		Fee: StdFee{
			Amount:  []Coin{{Denom: req.Fee.Denom, Amount: req.Fee.Amount}},
			Gas:     fmt.Sprintf("%d", req.Fee.GasLimit),
			Granter: req.Fee.Granter,
		},
		Memo: req.Memo,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal execute request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "failed to send execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read execute response")
	}

	c.logger.Debug("Received response from signing service", zap.Int("statusCode", resp.StatusCode))

	var response ExecuteResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrapf(err, "failed to unmarshal execute response (status %d)", resp.StatusCode)
	}

	if !response.Success || response.Code != 0 {
		return "", executeFailure(response)
	}
	if response.TxHash == "" {
		return "", errors.New("signing service reported success without a transaction hash")
	}

	return response.TxHash, nil
}

func executeFailure(r ExecuteResponse) error {
	parts := make([]string, 0, 3)
	if r.Error != "" {
		parts = append(parts, r.Error)
	}
	if r.RawLog != "" && r.RawLog != r.Error {
		parts = append(parts, r.RawLog)
	}
	if r.Code != 0 {
		parts = append(parts, fmt.Sprintf("code %d", r.Code))
	}
	if len(parts) == 0 {
		parts = append(parts, "unknown error")
	}
	if r.TxHash != "" {
		return errors.Newf("execute failed (tx %s): %s", r.TxHash, strings.Join(parts, ": "))
	}
	return errors.Newf("execute failed: %s", strings.Join(parts, ": "))
}

// CheckHealth checks that the signing service is reachable
func (c *SigningServiceClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create health check request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "health check failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("signing service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}
