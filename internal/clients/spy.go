package clients

import (
	"context"
	"time"

	publicrpcv1 "github.com/certusone/wormhole/node/pkg/proto/publicrpc/v1"
	spyv1 "github.com/certusone/wormhole/node/pkg/proto/spy/v1"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// EmitterFilter restricts the subscription to one emitter on one chain
type EmitterFilter struct {
	ChainID        uint16
	EmitterAddress string // 64 hex chars, no 0x prefix
}

// SpyClient handles connections to the Wormhole spy service
type SpyClient struct {
	endpoint string
	conn     *grpc.ClientConn
	filters  []EmitterFilter
	logger   *zap.Logger
}

// NewSpyClient creates a new client for the Wormhole spy service.
// With no filters every signed VAA is delivered.
func NewSpyClient(logger *zap.Logger, endpoint string, filters []EmitterFilter) (*SpyClient, error) {
	client := &SpyClient{
		endpoint: endpoint,
		filters:  filters,
		logger:   logger.With(zap.String("component", "SpyClient")),
	}

	client.logger.Info("Connecting to spy service",
		zap.String("endpoint", endpoint),
		zap.Int("emitterFilters", len(filters)))

	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to spy")
	}
	client.conn = conn

	return client, nil
}

// Close closes the connection to the spy service
func (c *SpyClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *SpyClient) request() *spyv1.SubscribeSignedVAARequest {
	req := &spyv1.SubscribeSignedVAARequest{}
	for _, f := range c.filters {
		req.Filters = append(req.Filters, &spyv1.FilterEntry{
			Filter: &spyv1.FilterEntry_EmitterFilter{
				EmitterFilter: &spyv1.EmitterFilter{
					ChainId:        publicrpcv1.ChainID(f.ChainID),
					EmitterAddress: f.EmitterAddress,
				},
			},
		})
	}
	return req
}

// SubscribeSignedVAA subscribes to signed VAAs with retry logic
func (c *SpyClient) SubscribeSignedVAA(ctx context.Context) (spyv1.SpyRPCService_SubscribeSignedVAAClient, error) {
	const maxRetries = 5
	const retryDelay = 2 * time.Second

	c.logger.Debug("Subscribing to signed VAAs")

	client := spyv1.NewSpyRPCServiceClient(c.conn)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		stream, err := client.SubscribeSignedVAA(ctx, c.request())
		if err == nil {
			return stream, nil
		}
		lastErr = err

		if attempt < maxRetries {
			c.logger.Warn("Subscribe attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
				zap.Duration("retryIn", retryDelay))

			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "context cancelled during retry")
			}
		}
	}

	return nil, errors.Wrapf(lastErr, "failed to subscribe after %d attempts", maxRetries)
}
