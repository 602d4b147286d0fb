package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"

	"github.com/bytedance/sonic"
)

// Client — REST-клиент OKX для USDT-маржинальных бессрочных свопов.
// Объёмы наружу отдаются в базовой монете, внутри переводятся в контракты.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	passph    string
	simulated bool

	now func() time.Time

	mu    sync.RWMutex
	pairs map[string]models.PairInfo
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Exchange.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.Exchange.BaseURL, "/"),
		apiKey:    cfg.Exchange.APIKey,
		apiSecret: cfg.Exchange.APISecret,
		passph:    cfg.Exchange.Passphrase,
		simulated: cfg.Exchange.Simulated,
		now:       time.Now,
		pairs:     make(map[string]models.PairInfo),
	}
}

// Close освобождает keep-alive соединения. Вызывается один раз в конце цикла.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) sign(ts, method, requestPath, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + strings.ToUpper(method) + requestPath + body))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// status — поле результата по отдельному элементу пакетного запроса.
type status struct {
	SCode string `json:"sCode"`
	SMsg  string `json:"sMsg"`
}

func (s status) err() error {
	if s.SCode != "" && s.SCode != "0" {
		return fmt.Errorf("sCode=%s sMsg=%s", s.SCode, s.SMsg)
	}
	return nil
}

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// call выполняет подписанный запрос и возвращает data из ответа OKX.
// code != "0" — ошибка. sCode по элементам проверяет вызывающий.
func call[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, body any) ([]T, error) {
	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s marshal: %w", op, err)
		}
	}

	ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s new request: %w", op, err)
	}
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", c.sign(ts, method, requestPath, string(payload)))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	req.Header.Set("Content-Type", "application/json")
	if c.simulated {
		req.Header.Set("x-simulated-trading", "1")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s do: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s http %d: %s", op, resp.StatusCode, string(data))
	}

	var r envelope[T]
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s decode: %w; body=%s", op, err, string(data))
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("%s okx error: code=%s msg=%s", op, r.Code, r.Msg)
	}
	return r.Data, nil
}
