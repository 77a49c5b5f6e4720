package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/activity-alarms/internal/api/grpc/nativescheduler"
	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/logger"
	pb "github.com/oshokin/activity-alarms/internal/pb/v1"
	"github.com/oshokin/activity-alarms/internal/platform"
	repository "github.com/oshokin/activity-alarms/internal/repository/schedule"
	"github.com/oshokin/activity-alarms/internal/version"
)

// Options controls the alarm-scheduler process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the path of the alarm store.
	StateFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the native scheduler daemon and blocks until ctx is canceled or
// the server stops.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-scheduler")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Setup(settings.LogLevel, nil); err != nil {
		return err
	}

	stateFile := settings.Scheduler.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.Scheduler.Address, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := openRepository(ctx, settings.Scheduler.Store, stateFile)
	if err != nil {
		return err
	}

	defer func() {
		_ = repo.Close()
	}()

	svc, err := newService(ctx, repo, newNotifier(&settings.Scheduler))
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer svc.Close()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterNativeSchedulerServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Native scheduler listening",
		"version", version.Short(),
		"listen_address", listenAddress,
		"store", settings.Scheduler.Store,
		"notifier", settings.Scheduler.Notifier,
		"state_file", stateFile)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// openRepository picks the alarm store configured for the daemon.
//
//nolint:ireturn // Callers only need the Repository behaviour.
func openRepository(ctx context.Context, store, path string) (repository.Repository, error) {
	if store == config.StoreSQLite {
		repo, err := repository.NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}

		return repo, nil
	}

	return repository.NewFileRepository(path), nil
}

// newNotifier picks the notifier configured for the daemon.
//
//nolint:ireturn // Every implementation satisfies Notifier.
func newNotifier(cfg *config.Scheduler) Notifier {
	switch cfg.Notifier {
	case config.NotifierCommand:
		return &platform.CommandNotifier{Command: cfg.NotifyCommand}
	case config.NotifierLog:
		return platform.LogNotifier{}
	default:
		return platform.DesktopNotifier{}
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise the configured
// address is used as-is so the daemon stays on loopback by default.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
