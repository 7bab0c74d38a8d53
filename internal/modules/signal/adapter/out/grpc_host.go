package out

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"go.uber.org/zap"

	signalrpc "worktrack/internal/modules/signal/adapter/out/rpc"
	"worktrack/internal/modules/signal/domain"
	signalout "worktrack/internal/modules/signal/port/out"
	"worktrack/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches signal-source plugins over go-plugin's gRPC transport.
// Plugin process output is forwarded to the zap logger at warn level.
type GRPCHost struct {
	log *zap.Logger
}

func NewGRPCHost(logger *zap.Logger) signalout.Host {
	return &GRPCHost{log: logging.OrNop(logger).Named("plugin-host")}
}

func (h *GRPCHost) Open(_ context.Context, manifest domain.Manifest) (signalout.Source, error) {
	cmd := exec.Command(manifest.Binary, manifest.Args...)
	cmd.Env = append(os.Environ(), envList(manifest.Env)...)

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  signalrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          signalrpc.PluginMap(nil),
		Cmd:              cmd,
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   manifest.Name,
			Output: zap.NewStdLog(h.log.With(zap.String("source", manifest.Name))).Writer(),
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(signalrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(signalrpc.SignalSourceClient)
	if !ok {
		closeFn()
		return nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return &grpcSource{client: typed, closeFn: closeFn}, nil
}

type grpcSource struct {
	client  signalrpc.SignalSourceClient
	closeFn func()
}

func (s *grpcSource) Describe(ctx context.Context) (domain.Description, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	desc, err := s.client.Describe(callCtx)
	if err != nil {
		return domain.Description{}, fmt.Errorf("describe: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(desc.Capabilities))
	for _, capability := range desc.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Description{Name: desc.Name, Version: desc.Version, Capabilities: capabilities}, nil
}

func (s *grpcSource) Poll(ctx context.Context, cursor string) ([]domain.Signal, string, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := s.client.Poll(callCtx, &signalrpc.PollRequest{Cursor: cursor})
	if err != nil {
		return nil, cursor, fmt.Errorf("poll: %w", err)
	}
	signals := make([]domain.Signal, 0, len(response.Signals))
	for _, sig := range response.Signals {
		signals = append(signals, domain.Signal{
			Kind:        domain.Kind(sig.Kind),
			Zone:        sig.Zone,
			SessionType: sig.SessionType,
			BeaconID:    sig.BeaconID,
			Time:        sig.Time,
		})
	}
	return signals, response.Cursor, nil
}

func (s *grpcSource) Close() {
	s.closeFn()
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
