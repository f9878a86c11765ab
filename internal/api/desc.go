// Package api exposes parkd's control API over gRPC.
//
// Messages are google.protobuf.Struct documents whose shape matches the JSON
// served by the web API, so parkctl and the web share one wire vocabulary.
package api

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "chinopark.v1.ParkingService"

// Full method names.
const (
	MethodGetStatus   = "/" + ServiceName + "/GetStatus"
	MethodListSpaces  = "/" + ServiceName + "/ListSpaces"
	MethodGetReport   = "/" + ServiceName + "/GetReport"
	MethodCheckIn     = "/" + ServiceName + "/CheckIn"
	MethodCheckOut    = "/" + ServiceName + "/CheckOut"
	MethodWatchEvents = "/" + ServiceName + "/WatchEvents"
)

// ParkingServer is the server side of chinopark.v1.ParkingService.
type ParkingServer interface {
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSpaces(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchEvents(*structpb.Struct, EventStream) error
}

// EventStream is the server stream of WatchEvents.
type EventStream interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type eventStream struct {
	grpc.ServerStream
}

func (s *eventStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func unary(name string, call func(ParkingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ParkingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ParkingServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes chinopark.v1.ParkingService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParkingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", ParkingServer.GetStatus),
		unary("ListSpaces", ParkingServer.ListSpaces),
		unary("GetReport", ParkingServer.GetReport),
		unary("CheckIn", ParkingServer.CheckIn),
		unary("CheckOut", ParkingServer.CheckOut),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(structpb.Struct)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(ParkingServer).WatchEvents(in, &eventStream{stream})
			},
		},
	},
	Metadata: "chinopark/v1/parking.proto",
}

// RegisterParkingServer registers srv on s.
func RegisterParkingServer(s grpc.ServiceRegistrar, srv ParkingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Encode converts a JSON-tagged value into a Struct message.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// Decode fills v from a Struct message.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
