// Package sheets implements the Catalog Store and Order Sink on top of a
// spreadsheet exposed through a row-oriented values REST API. The sheet
// is the distributor's actual "database": one tab per table, header in
// row 1, column order significant.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("sheets")

// Client wraps HTTP calls to the spreadsheet values API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	spreadsheetID string
	cb            *gobreaker.CircuitBreaker
	cfg           resilience.Config
	bulkhead      *resilience.Bulkhead
	logger        *zap.Logger
}

// NewClient creates a spreadsheet API client.
func NewClient(httpClient *http.Client, baseURL, apiKey, spreadsheetID string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 10
	}
	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		apiKey:        apiKey,
		spreadsheetID: spreadsheetID,
		cb:            cb,
		cfg:           cfg,
		bulkhead:      resilience.NewBulkhead(maxConc),
		logger:        logger,
	}
}

// classifyErr turns breaker and deadline failures into their typed
// domain errors so callers can distinguish "the sheet is tripping the
// breaker" from "one request died".
func classifyErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "sheets"}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: op}
	default:
		return err
	}
}

// valueRange mirrors the values API payload: a rectangular block of
// cells addressed A1-style, every cell serialized as a string.
type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

// GetRange fetches all rows of a range, e.g. "Clientes!A2:F".
func (c *Client) GetRange(ctx context.Context, rng string) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "Sheets.GetRange")
	defer span.End()
	span.SetAttributes(attribute.String("sheet.range", rng))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, classifyErr("sheets.get "+rng, err)
	}
	defer c.bulkhead.Release()

	var rows [][]string
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
				c.baseURL, c.spreadsheetID, url.PathEscape(rng), url.QueryEscape(c.apiKey))

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				c.logger.Warn("sheets: non-2xx response",
					zap.String("range", rng),
					zap.Int("status", resp.StatusCode),
					zap.String("body", string(body)),
				)
				return fmt.Errorf("sheets returned status %d: %s", resp.StatusCode, string(body))
			}

			var vr valueRange
			if err := json.Unmarshal(body, &vr); err != nil {
				return fmt.Errorf("decode value range: %w", err)
			}
			rows = vr.Values
			return nil
		})
	})
	if err != nil {
		return nil, classifyErr("sheets.get "+rng, err)
	}

	c.logger.Debug("sheets: range fetched",
		zap.String("range", rng),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// AppendRows appends rows after the last non-empty row of a range.
func (c *Client) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	ctx, span := tracer.Start(ctx, "Sheets.AppendRows")
	defer span.End()
	span.SetAttributes(
		attribute.String("sheet.range", rng),
		attribute.Int("sheet.rows", len(rows)),
	)

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return classifyErr("sheets.append "+rng, err)
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			payload, err := json.Marshal(valueRange{Values: rows})
			if err != nil {
				return fmt.Errorf("marshal value range: %w", err)
			}

			path := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&key=%s",
				c.baseURL, c.spreadsheetID, url.PathEscape(rng), url.QueryEscape(c.apiKey))

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				body, _ := io.ReadAll(resp.Body)
				c.logger.Warn("sheets: append failed",
					zap.String("range", rng),
					zap.Int("status", resp.StatusCode),
					zap.String("body", string(body)),
				)
				return fmt.Errorf("sheets append returned status %d", resp.StatusCode)
			}
			return nil
		})
	})
	return classifyErr("sheets.append "+rng, err)
}
