package chartdata

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrSymbolFormat is returned when a symbol is not of the form
// "EXCHANGE:SYMBOL".
var ErrSymbolFormat = errors.New(`symbol must look like "BINANCE:BTCUSDT"`)

// ErrSymbolNotFound is returned when the scanner endpoint reports the symbol
// does not exist.
var ErrSymbolNotFound = errors.New("symbol not found")

// SplitSymbol splits an "EXCHANGE:SYMBOL" pair into its parts.
func SplitSymbol(symbol string) (exchange, name string, err error) {
	parts := strings.Split(symbol, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w, got %q", ErrSymbolFormat, symbol)
	}
	return parts[0], parts[1], nil
}

// ValidateSymbol checks the symbol format and asks the scanner endpoint
// whether the symbol exists. A 404 means the symbol is invalid; other
// failures are retried by the underlying request loop.
func (c *client) ValidateSymbol(symbol string) error {
	exchange, name, err := SplitSymbol(symbol)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/symbol?symbol=%s&fields=market&no_404=false",
		c.opts.ScannerBaseURL, url.QueryEscape(exchange+":"+name))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(c, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %q", ErrSymbolNotFound, symbol)
		}
		return fmt.Errorf("validate symbol %q: %w", symbol, err)
	}
	resp.Body.Close()
	return nil
}
