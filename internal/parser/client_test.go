package parser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"transactions": [
		{
			"bank": "SG",
			"accountIban": "FR7612345",
			"dateOperation": "2025-03-03",
			"dateValeur": "2025-03-04",
			"label": "PRLV POUR CPTE DE: EDF",
			"details": "REF 42",
			"debit": 55.10,
			"credit": 0,
			"amount": -55.10,
			"yearMonth": "2025-03",
			"sourceFile": "mars.csv"
		},
		{
			"bank": "SG",
			"accountIban": "FR7612345",
			"dateOperation": "2025-03-10T00:00:00Z",
			"label": "VIR RECU SALAIRE",
			"credit": 2400,
			"amount": 2400
		}
	]
}`

func TestParseStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parse/sg/csv", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "mars.csv", header.Filename)
		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Contains(t, string(uploaded), "raw statement bytes")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	rows, err := client.ParseStatement(context.Background(), "mars.csv", strings.NewReader("raw statement bytes"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SG", rows[0].Bank)
	assert.Equal(t, "FR7612345", rows[0].AccountIBAN)
	assert.True(t, rows[0].DateOperation.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rows[0].DateValeur.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rows[0].Debit.Equal(decimal.RequireFromString("55.10")))
	assert.Equal(t, "2025-03", rows[0].YearMonth)
	assert.Equal(t, "mars.csv", rows[0].SourceFile)

	// RFC3339 dates are accepted too, and missing sourceFile/yearMonth
	// fall back to the upload name and the operation date.
	assert.True(t, rows[1].DateOperation.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rows[1].DateValeur.IsZero())
	assert.Equal(t, "mars.csv", rows[1].SourceFile)
	assert.Equal(t, "2025-03", rows[1].YearMonth)
}

func TestParseStatement_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported file", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	_, err := client.ParseStatement(context.Background(), "bad.csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestParseStatement_BadDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"transactions":[{"dateOperation":"03/03/2025","label":"X"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	_, err := client.ParseStatement(context.Background(), "mars.csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestParseStatement_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, zerolog.Nop())
	_, err := client.ParseStatement(context.Background(), "mars.csv", strings.NewReader("x"))
	require.Error(t, err)
}
