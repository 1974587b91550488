// Package parser is the client for the external statement-parsing
// service, the only network collaborator of the core. The service owns
// all file-format knowledge; this client uploads the raw statement and
// receives already-parsed rows. A timeout or non-2xx response fails
// the whole import before any row is applied.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/period"
)

// DefaultTimeout bounds a parse request when the config does not set one.
const DefaultTimeout = 30 * time.Second

// Client calls the statement-parsing service.
type Client struct {
	baseURL string
	hc      *http.Client
	log     zerolog.Logger
}

// NewClient creates a parser client. A zero timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

type parseResponse struct {
	Transactions []wireRow `json:"transactions"`
}

type wireRow struct {
	Bank          string          `json:"bank"`
	AccountIBAN   string          `json:"accountIban"`
	DateOperation string          `json:"dateOperation"`
	DateValeur    string          `json:"dateValeur"`
	Label         string          `json:"label"`
	Details       string          `json:"details"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Amount        decimal.Decimal `json:"amount"`
	YearMonth     string          `json:"yearMonth"`
	SourceFile    string          `json:"sourceFile"`
}

// ParseStatement uploads a raw statement file and returns the parsed
// rows, in statement order.
func (c *Client) ParseStatement(ctx context.Context, filename string, file io.Reader) ([]model.StatementRow, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse/sg/csv", &body)
	if err != nil {
		return nil, fmt.Errorf("building parse request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling parser service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("parser service returned %s for %s", resp.Status, filename)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding parser response: %w", err)
	}

	rows := make([]model.StatementRow, 0, len(parsed.Transactions))
	for i, w := range parsed.Transactions {
		row, err := w.toRow()
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+1, filename, err)
		}
		if row.SourceFile == "" {
			row.SourceFile = filename
		}
		if row.YearMonth == "" {
			row.YearMonth = period.FromDate(row.DateOperation)
		}
		rows = append(rows, row)
	}

	c.log.Debug().
		Str("file", filename).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("statement parsed")
	return rows, nil
}

func (w wireRow) toRow() (model.StatementRow, error) {
	dateOp, err := parseDate(w.DateOperation)
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("dateOperation: %w", err)
	}

	var dateVal time.Time
	if w.DateValeur != "" {
		dateVal, err = parseDate(w.DateValeur)
		if err != nil {
			return model.StatementRow{}, fmt.Errorf("dateValeur: %w", err)
		}
	}

	return model.StatementRow{
		Bank:          w.Bank,
		AccountIBAN:   w.AccountIBAN,
		DateOperation: dateOp,
		DateValeur:    dateVal,
		Label:         w.Label,
		Details:       w.Details,
		Debit:         w.Debit,
		Credit:        w.Credit,
		Amount:        w.Amount,
		YearMonth:     w.YearMonth,
		SourceFile:    w.SourceFile,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
