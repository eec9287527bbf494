package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	spyv1 "github.com/certusone/wormhole/node/pkg/proto/spy/v1"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

type fakeStream struct {
	grpc.ClientStream
	ctx  context.Context
	vaas chan []byte
}

func (s *fakeStream) Recv() (*spyv1.SubscribeSignedVAAResponse, error) {
	select {
	case b, ok := <-s.vaas:
		if !ok {
			return nil, errors.New("stream closed")
		}
		return &spyv1.SubscribeSignedVAAResponse{VaaBytes: b}, nil
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
}

type fakeSource struct {
	mu         sync.Mutex
	vaas       chan []byte
	subscribes int
	closed     bool
	failAfter  int // subscriptions beyond this count fail
}

func (f *fakeSource) SubscribeSignedVAA(ctx context.Context) (spyv1.SpyRPCService_SubscribeSignedVAAClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	if f.failAfter > 0 && f.subscribes > f.failAfter {
		return nil, errors.New("spy unavailable")
	}
	return &fakeStream{ctx: ctx, vaas: f.vaas}, nil
}

func (f *fakeSource) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []uint64
}

func (p *recordingProcessor) ProcessVAA(_ context.Context, vaaData VAAData) (*submitter.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, vaaData.Sequence)
	outcome := submitter.CompletedOutcome("ABC123")
	return &outcome, nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestNewRelayer(t *testing.T) {
	_, err := NewRelayer(zap.NewNop(), nil, &recordingProcessor{}, 1)
	require.ErrorContains(t, err, "source is required")

	_, err = NewRelayer(zap.NewNop(), &fakeSource{}, nil, 1)
	require.ErrorContains(t, err, "processor is required")

	r, err := NewRelayer(zap.NewNop(), &fakeSource{}, &recordingProcessor{}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, r.maxConcurrent)
}

func TestRelayerProcessesStream(t *testing.T) {
	source := &fakeSource{vaas: make(chan []byte)}
	processor := &recordingProcessor{}
	r, err := NewRelayer(zap.NewNop(), source, processor, 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	for seq := uint64(1); seq <= 5; seq++ {
		source.vaas <- signedVAA(t, seq, transferPayload(1, vaaLib.ChainIDSei))
	}
	// Unparseable VAAs are dropped without reaching the processor
	source.vaas <- []byte{0xff}

	require.Eventually(t, func() bool { return processor.count() == 5 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relayer did not stop")
	}

	r.Close()
	require.True(t, source.closed)
	require.ElementsMatch(t, []uint64{1, 2, 3, 4, 5}, processor.seen)
}

func TestRelayerResubscribeFailure(t *testing.T) {
	vaas := make(chan []byte)
	close(vaas)
	source := &fakeSource{vaas: vaas, failAfter: 1}
	r, err := NewRelayer(zap.NewNop(), source, &recordingProcessor{}, 1)
	require.NoError(t, err)
	r.resubscribeDelay = time.Millisecond

	// The closed stream errors immediately; the resubscribe after the pause fails
	err = r.Start(context.Background())
	require.ErrorContains(t, err, "subscribe to VAA stream after retry")
	require.Equal(t, 2, source.subscribes)
}
