// Package grpc отдает и получает курсы валют по gRPC.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName     = "travelwallet.rates.v1.RatesService"
	fetchRateMethod = "/" + serviceName + "/FetchRate"
	convertMethod   = "/" + serviceName + "/Convert"
)

// Поля сообщений
const (
	fieldFrom   = "from"
	fieldTo     = "to"
	fieldAmount = "amount"
	fieldRate   = "rate"
)

// RatesServer серверная часть сервиса курсов
type RatesServer interface {
	// FetchRate принимает {from, to} и отвечает {rate}
	FetchRate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Convert принимает {from, to, amount} и отвечает {amount}
	Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RatesServiceDesc описание сервиса для grpc.Server.RegisterService
var RatesServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RatesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchRate", Handler: fetchRateHandler},
		{MethodName: "Convert", Handler: convertHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "travelwallet/rates/v1/rates.proto",
}

// RegisterRatesServer регистрирует реализацию на сервере
func RegisterRatesServer(s grpc.ServiceRegistrar, srv RatesServer) {
	s.RegisterService(&RatesServiceDesc, srv)
}

func fetchRateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RatesServer).FetchRate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fetchRateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RatesServer).FetchRate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func convertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RatesServer).Convert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: convertMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RatesServer).Convert(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func newMessage(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}

func stringField(s *structpb.Struct, name string) string {
	if v, ok := s.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func numberField(s *structpb.Struct, name string) (float64, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, false
	}
	return v.GetNumberValue(), true
}
