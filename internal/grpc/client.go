package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"travel-wallet/internal/rates"
)

// ExchangerClient реализует rates.Provider через удаленный RatesService
type ExchangerClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	logger  *logrus.Logger
}

// NewExchangerClient создает соединение с сервисом курсов.
// Соединение ленивое: недоступный сервер проявится как rates.ErrUnavailable.
func NewExchangerClient(host, port string, timeout time.Duration, logger *logrus.Logger) (*ExchangerClient, error) {
	address := fmt.Sprintf("%s:%s", host, port)

	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to exchanger service: %w", err)
	}

	logger.Infof("Exchanger client configured for %s", address)
	return NewExchangerClientWithConn(conn, timeout, logger), nil
}

// NewExchangerClientWithConn использует готовое соединение
func NewExchangerClientWithConn(conn *grpc.ClientConn, timeout time.Duration, logger *logrus.Logger) *ExchangerClient {
	return &ExchangerClient{
		conn:    conn,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *ExchangerClient) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchRate получает курс для пары валют
func (c *ExchangerClient) FetchRate(ctx context.Context, from, to string) (float64, error) {
	c.logger.Debugf("Requesting exchange rate: %s -> %s", from, to)

	resp, err := c.invoke(ctx, fetchRateMethod, newMessage(map[string]*structpb.Value{
		fieldFrom: structpb.NewStringValue(from),
		fieldTo:   structpb.NewStringValue(to),
	}))
	if err != nil {
		c.logger.Errorf("Failed to get exchange rate for %s->%s: %v", from, to, err)
		return 0, fmt.Errorf("%w: %v", rates.ErrUnavailable, err)
	}

	rate, ok := numberField(resp, fieldRate)
	if !ok || !rates.Usable(rate) {
		return 0, fmt.Errorf("%w: bad rate in response", rates.ErrUnavailable)
	}
	return rate, nil
}

// Convert конвертирует сумму на стороне сервиса
func (c *ExchangerClient) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	resp, err := c.invoke(ctx, convertMethod, newMessage(map[string]*structpb.Value{
		fieldFrom:   structpb.NewStringValue(from),
		fieldTo:     structpb.NewStringValue(to),
		fieldAmount: structpb.NewNumberValue(amount),
	}))
	if err != nil {
		c.logger.Errorf("Failed to convert %s->%s: %v", from, to, err)
		return 0, fmt.Errorf("%w: %v", rates.ErrUnavailable, err)
	}

	converted, ok := numberField(resp, fieldAmount)
	if !ok || !rates.Usable(converted) {
		return 0, fmt.Errorf("%w: bad amount in response", rates.ErrUnavailable)
	}
	return converted, nil
}

// Close закрывает соединение с gRPC сервером
func (c *ExchangerClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing connection to exchanger service")
		return c.conn.Close()
	}
	return nil
}
