//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/activity-alarms/internal/config"
	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	pb "github.com/oshokin/activity-alarms/internal/pb/v1"
)

// Client wraps the NativeScheduler gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the NativeScheduler client interface.
	api pb.NativeSchedulerClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// dialOptions are appended to the defaults when connecting.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions adds gRPC dial options, such as a custom dialer.
func WithDialOptions(options ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, options...)
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a gRPC connection to the native scheduler daemon. The
// connection is established lazily on the first call.
// Note: this uses insecure transport credentials; the daemon is meant to
// listen on loopback only.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, client.dialOptions...)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial native scheduler: %w", err)
	}

	client.conn = conn
	client.api = pb.NewNativeSchedulerClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ScheduleAlarm asks the daemon to fire the alarm at timestampMs (Unix milliseconds).
func (c *Client) ScheduleAlarm(ctx context.Context, id string, timestampMs int64, title string, vibrate bool) error {
	alarm := &domain.Scheduled{
		ID:      id,
		Title:   title,
		Vibrate: vibrate,
	}

	if timestampMs > 0 {
		alarm.At = time.UnixMilli(timestampMs)
	}

	request, err := pb.AlarmToStruct(alarm)
	if err != nil {
		return fmt.Errorf("schedule alarm: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err = c.api.ScheduleAlarm(callCtx, request); err != nil {
		return fmt.Errorf("schedule alarm: %w", err)
	}

	return nil
}

// CancelAlarm asks the daemon to drop the alarm with id.
func (c *Client) CancelAlarm(ctx context.Context, id string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.CancelAlarm(callCtx, wrapperspb.String(id)); err != nil {
		return fmt.Errorf("cancel alarm: %w", err)
	}

	return nil
}

// ListAlarms returns the alarms pending in the daemon.
func (c *Client) ListAlarms(ctx context.Context) ([]*domain.Scheduled, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	alarms, err := pb.AlarmsFromList(response)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return alarms, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
