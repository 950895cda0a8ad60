// Package exchangerate получает курсы через API exchangerate.host.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/rates"
)

// Поля с курсом за единицу валюты
var labeledPaths = []string{"$.info.quote", "$.info.rate"}

// Поля, в которых API кладет либо сумму, либо курс
var barePaths = []string{"$.result", "$.query.result"}

// Config содержит параметры клиента
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// AmbiguityFactor порог, выше которого голое значение считается курсом, а не суммой
	AmbiguityFactor float64
}

// Client реализует rates.Provider поверх /convert
type Client struct {
	baseURL    string
	apiKey     string
	factor     float64
	httpClient *http.Client
	logger     *logrus.Logger
}

// New создает клиент exchangerate.host
func New(cfg *Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		factor:     cfg.AmbiguityFactor,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// FetchRate возвращает курс from -> to, конвертируя одну единицу
func (c *Client) FetchRate(ctx context.Context, from, to string) (float64, error) {
	return c.Convert(ctx, 1, from, to)
}

// Convert конвертирует amount из from в to
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	doc, err := c.get(ctx, amount, from, to)
	if err != nil {
		c.logger.Warnf("Rate request %s -> %s failed: %v", from, to, err)
		return 0, fmt.Errorf("%w: %v", rates.ErrUnavailable, err)
	}

	converted, ok := c.extract(doc, amount)
	if !ok || !rates.Usable(converted) {
		c.logger.Warnf("Rate response %s -> %s has no usable value", from, to)
		return 0, fmt.Errorf("%w: no usable value in response", rates.ErrUnavailable)
	}

	c.logger.Debugf("Converted %.4f %s -> %.4f %s", amount, from, converted, to)
	return converted, nil
}

func (c *Client) get(ctx context.Context, amount float64, from, to string) (any, error) {
	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("from", from)
	params.Set("to", to)
	params.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/convert?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		if success, ok := obj["success"].(bool); ok && !success {
			return nil, fmt.Errorf("api error: %v", apiErrorInfo(obj["error"]))
		}
	}

	return doc, nil
}

// extract ищет сумму конвертации: сначала курс за единицу, затем голое значение
func (c *Client) extract(doc any, amount float64) (float64, bool) {
	for _, path := range labeledPaths {
		if quote, ok := lookupFloat(doc, path); ok {
			return amount * quote, true
		}
	}

	for _, path := range barePaths {
		value, ok := lookupFloat(doc, path)
		if !ok {
			continue
		}
		// Некоторые ответы кладут в result курс вместо суммы.
		// Для экстремальных курсов эвристика ошибается.
		if value > amount*c.factor {
			return amount * value, true
		}
		return value, true
	}

	return 0, false
}

func lookupFloat(doc any, path string) (float64, bool) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, false
	}
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return 0, false
		}
		val = list[0]
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		return f, err == nil
	}
	return 0, false
}

func apiErrorInfo(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if info, ok := obj["info"].(string); ok {
			return info
		}
	}
	if v == nil {
		return "unknown error"
	}
	return fmt.Sprint(v)
}
