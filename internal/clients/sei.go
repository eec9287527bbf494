package clients

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// SeiClient runs CosmWasm smart queries through a Sei LCD (REST) endpoint
type SeiClient struct {
	lcdURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSeiClient creates a new client for the Sei LCD endpoint
func NewSeiClient(logger *zap.Logger, lcdURL string) *SeiClient {
	client := &SeiClient{
		lcdURL: strings.TrimSuffix(lcdURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(zap.String("component", "SeiClient")),
	}

	client.logger.Info("Using Sei LCD endpoint", zap.String("lcdURL", client.lcdURL))
	return client
}

// QueryContractSmart sends query to contract and returns the JSON found under "data"
func (c *SeiClient) QueryContractSmart(ctx context.Context, contract string, query []byte) ([]byte, error) {
	encoded := base64.StdEncoding.EncodeToString(query)
	endpoint := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s",
		c.lcdURL, url.PathEscape(contract), url.PathEscape(encoded))

	c.logger.Debug("Querying contract", zap.String("contract", contract), zap.ByteString("query", query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smart query request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "smart query request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read smart query response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, errors.Newf("smart query failed with status %d: %s", resp.StatusCode, msg)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, errors.Newf("smart query response has no data field: %s", body)
	}

	return []byte(data.Raw), nil
}
