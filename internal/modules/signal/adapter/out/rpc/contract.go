package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey   = "signal_source"
	serviceName    = "worktrack.signal.v1.SignalSource"
	jsonCodecName  = "json"
	methodDescribe = "/" + serviceName + "/Describe"
	methodPoll     = "/" + serviceName + "/Poll"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "WORKTRACK_SIGNAL_SOURCE",
	MagicCookieValue: "worktrack",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Description struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type Signal struct {
	Kind        string    `json:"kind"`
	Zone        string    `json:"zone,omitempty"`
	SessionType string    `json:"session_type,omitempty"`
	BeaconID    string    `json:"beacon_id,omitempty"`
	Time        time.Time `json:"time,omitempty"`
}

type PollRequest struct {
	Cursor string `json:"cursor"`
}

type PollResponse struct {
	Signals []Signal `json:"signals"`
	Cursor  string   `json:"cursor"`
}

type SignalSourceServer interface {
	Describe(ctx context.Context, in *Empty) (*Description, error)
	Poll(ctx context.Context, in *PollRequest) (*PollResponse, error)
}

type SignalSourceClient interface {
	Describe(ctx context.Context) (*Description, error)
	Poll(ctx context.Context, in *PollRequest) (*PollResponse, error)
}

type signalSourceClient struct {
	conn *grpc.ClientConn
}

func NewSignalSourceClient(conn *grpc.ClientConn) SignalSourceClient {
	return &signalSourceClient{conn: conn}
}

func (c *signalSourceClient) Describe(ctx context.Context) (*Description, error) {
	out := &Description{}
	if err := c.conn.Invoke(ctx, methodDescribe, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signalSourceClient) Poll(ctx context.Context, in *PollRequest) (*PollResponse, error) {
	out := &PollResponse{}
	if err := c.conn.Invoke(ctx, methodPoll, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterSignalSourceServer(server grpc.ServiceRegistrar, impl SignalSourceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*SignalSourceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Describe",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Describe(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDescribe}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Describe(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Poll",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PollRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Poll(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPoll}
					handler := func(ctx context.Context, req any) (any, error) {
						pollReq, ok := req.(*PollRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Poll(ctx, pollReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/signal-source-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl SignalSourceServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterSignalSourceServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewSignalSourceClient(conn), nil
}

func PluginMap(impl SignalSourceServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
