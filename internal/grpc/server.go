package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"travel-wallet/internal/rates"
)

// ExchangeServer отдает курсы любого rates.Provider другим сервисам
type ExchangeServer struct {
	provider rates.Provider
	logger   *logrus.Logger
}

// NewExchangeServer создает новый экземпляр ExchangeServer
func NewExchangeServer(provider rates.Provider, logger *logrus.Logger) *ExchangeServer {
	return &ExchangeServer{
		provider: provider,
		logger:   logger,
	}
}

func currencyPair(req *structpb.Struct) (string, string, error) {
	from := strings.ToUpper(strings.TrimSpace(stringField(req, fieldFrom)))
	to := strings.ToUpper(strings.TrimSpace(stringField(req, fieldTo)))
	if from == "" || to == "" {
		return "", "", status.Error(codes.InvalidArgument, "from and to are required")
	}
	return from, to, nil
}

func providerError(err error) error {
	if errors.Is(err, rates.ErrUnavailable) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// FetchRate возвращает курс пары валют
func (s *ExchangeServer) FetchRate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, to, err := currencyPair(req)
	if err != nil {
		return nil, err
	}

	rate := 1.0
	if from != to {
		rate, err = s.provider.FetchRate(ctx, from, to)
		if err != nil {
			s.logger.Warnf("Failed to get exchange rate for %s -> %s: %v", from, to, err)
			return nil, providerError(err)
		}
	}

	return newMessage(map[string]*structpb.Value{
		fieldFrom: structpb.NewStringValue(from),
		fieldTo:   structpb.NewStringValue(to),
		fieldRate: structpb.NewNumberValue(rate),
	}), nil
}

// Convert конвертирует сумму
func (s *ExchangeServer) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, to, err := currencyPair(req)
	if err != nil {
		return nil, err
	}

	amount, ok := numberField(req, fieldAmount)
	if !ok || !rates.Usable(amount) {
		return nil, status.Error(codes.InvalidArgument, "amount must be positive")
	}

	converted := amount
	if from != to {
		converted, err = s.provider.Convert(ctx, amount, from, to)
		if err != nil {
			s.logger.Warnf("Failed to convert %s -> %s: %v", from, to, err)
			return nil, providerError(err)
		}
	}

	return newMessage(map[string]*structpb.Value{
		fieldFrom:   structpb.NewStringValue(from),
		fieldTo:     structpb.NewStringValue(to),
		fieldAmount: structpb.NewNumberValue(converted),
	}), nil
}

// LoggingInterceptor логирует каждый unary вызов
func LoggingInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Errorf("gRPC method: %s, duration: %v, error: %v", info.FullMethod, duration, err)
		} else {
			log.Infof("gRPC method: %s, duration: %v, status: success", info.FullMethod, duration)
		}

		return resp, err
	}
}
