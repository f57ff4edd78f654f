package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brokerage-portal/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client is the portal's handle on the Zeebe gateway.
type Client struct {
	zeebe   zbc.Client
	timeout time.Duration
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds the backoff used for gateway calls.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClientWithConfig dials the gateway and waits until the topology shows a
// leader for every partition.
func NewClientWithConfig(cfg *ClientConfig) (*Client, error) {
	rc := cfg.RetryConfig
	if rc == nil {
		rc = DefaultRetryConfig
	}
	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	zeebe, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zeebe: zeebe, timeout: timeout}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := Retry(ctx, rc, "topology", c.HealthCheck); err != nil {
		zeebe.Close()
		return nil, fmt.Errorf("zeebe gateway %s not ready: %w", cfg.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for opening job workers.
func (c *Client) GetClient() zbc.Client {
	return c.zeebe
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}

// HealthCheck backs the /ready probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.zeebe.NewTopologyCommand().Send(ctx)
	if err != nil {
		return err
	}
	return checkTopology(resp)
}

// checkTopology requires a broker and a leader for every partition the
// cluster reports.
func checkTopology(resp *pb.TopologyResponse) error {
	if len(resp.GetBrokers()) == 0 {
		return status.Error(codes.Unavailable, "topology lists no brokers")
	}
	leaders := map[int32]bool{}
	for _, b := range resp.GetBrokers() {
		for _, p := range b.GetPartitions() {
			if p.GetRole() == pb.Partition_LEADER && p.GetHealth() == pb.Partition_HEALTHY {
				leaders[p.GetPartitionId()] = true
			}
		}
	}
	for id := int32(1); id <= resp.GetPartitionsCount(); id++ {
		if !leaders[id] {
			return status.Errorf(codes.Unavailable, "partition %d has no healthy leader", id)
		}
	}
	return nil
}

// Retry runs fn with exponential backoff while the failure is transient.
// The final failure is returned as a StandardError.
func Retry(ctx context.Context, rc *RetryConfig, operationName string, fn func(context.Context) error) error {
	if rc == nil {
		rc = DefaultRetryConfig
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt == rc.MaxRetries {
			return mapZeebeError(err, operationName, attempt)
		}

		delay := rc.BaseDelay << attempt
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}
}

// classify reads the gRPC code from gateway errors and falls back to the
// message for errors that lost their status on the way.
func classify(err error) codes.Code {
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return st.Code()
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		return codes.DeadlineExceeded
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unreachable"):
		return codes.Unavailable
	case strings.Contains(msg, "not found") || strings.Contains(msg, "not_found"):
		return codes.NotFound
	case strings.Contains(msg, "already exists"):
		return codes.AlreadyExists
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "unauthorized"):
		return codes.PermissionDenied
	default:
		return codes.Unknown
	}
}

func isTransient(err error) bool {
	switch classify(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

func mapZeebeError(err error, operation string, attempt int) error {
	msg := fmt.Sprintf("zeebe %s", operation)
	if attempt > 0 {
		msg += fmt.Sprintf(" after %d attempts", attempt)
	}
	detail := fmt.Errorf("%s: %w", msg, err)

	switch classify(err) {
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", detail)
	case codes.NotFound:
		return errors.NewResourceNotFoundError("zeebe", detail.Error())
	case codes.AlreadyExists, codes.FailedPrecondition:
		return errors.NewBusinessRuleError(detail.Error(), "zeebe rejected the command")
	case codes.PermissionDenied, codes.Unauthenticated:
		return errors.NewAuthenticationError(detail.Error())
	default:
		return errors.NewExternalServiceError("zeebe", detail)
	}
}
