// Command replay is a signal source that plays back a JSON-lines script,
// one signal per poll. The script path comes from the first argument or
// WORKTRACK_REPLAY_SCRIPT. The poll cursor is the index of the next line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	signalrpc "worktrack/internal/modules/signal/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const scriptEnv = "WORKTRACK_REPLAY_SCRIPT"

type server struct {
	signals []signalrpc.Signal
}

func (s *server) Describe(_ context.Context, _ *signalrpc.Empty) (*signalrpc.Description, error) {
	return &signalrpc.Description{
		Name:         "replay",
		Version:      "1.0.0",
		Capabilities: []string{"geofence", "beacon", "manual"},
	}, nil
}

func (s *server) Poll(_ context.Context, in *signalrpc.PollRequest) (*signalrpc.PollResponse, error) {
	next := 0
	if in.Cursor != "" {
		parsed, err := strconv.Atoi(in.Cursor)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid cursor: %q", in.Cursor)
		}
		next = parsed
	}
	if next >= len(s.signals) {
		return &signalrpc.PollResponse{Signals: []signalrpc.Signal{}, Cursor: strconv.Itoa(len(s.signals))}, nil
	}
	return &signalrpc.PollResponse{
		Signals: []signalrpc.Signal{s.signals[next]},
		Cursor:  strconv.Itoa(next + 1),
	}, nil
}

func loadScript(path string) ([]signalrpc.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var signals []signalrpc.Signal
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var sig signalrpc.Signal
		if err := json.Unmarshal([]byte(text), &sig); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		signals = append(signals, sig)
	}
	return signals, scanner.Err()
}

func main() {
	path := os.Getenv(scriptEnv)
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	var signals []signalrpc.Signal
	if path != "" {
		loaded, err := loadScript(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			os.Exit(1)
		}
		signals = loaded
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: signalrpc.HandshakeConfig,
		Plugins:         signalrpc.PluginMap(&server{signals: signals}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
