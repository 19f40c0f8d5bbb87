package chartdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the stateless TradingView HTTP endpoints that support a
// stream: symbol validation and indicator (Pine script) metadata.
type Client interface {
	// ValidateSymbol checks that symbol ("EXCHANGE:SYMBOL") exists.
	ValidateSymbol(symbol string) error
	// StudyParams builds the opaque create_study parameter payload for the
	// given script, bound to a chart session and study slot.
	StudyParams(scriptID, scriptVersion, chartSession, slot string) (json.RawMessage, error)
}

// ClientOpts contains options for the chartdata client.
type ClientOpts struct {
	ScannerBaseURL string
	PineBaseURL    string
	Timeout        time.Duration
	RetryLimit     int
	RetryDelay     time.Duration
}

type client struct {
	opts ClientOpts

	do func(c *client, req *http.Request) (*http.Response, error)
}

// NewClient creates a new chartdata client using the given opts.
func NewClient(opts ClientOpts) Client {
	if opts.ScannerBaseURL == "" {
		opts.ScannerBaseURL = "https://scanner.tradingview.com"
	}
	if opts.PineBaseURL == "" {
		opts.PineBaseURL = "https://pine-facade.tradingview.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryLimit == 0 {
		opts.RetryLimit = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	return &client{
		opts: opts,

		do: defaultDo,
	}
}

// DefaultClient uses the default options.
var DefaultClient = NewClient(ClientOpts{})

func defaultDo(c *client, req *http.Request) (*http.Response, error) {
	httpClient := &http.Client{
		Timeout: c.opts.Timeout,
	}
	var resp *http.Response
	var err error
	for i := 1; ; i++ {
		resp, err = httpClient.Do(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError &&
			resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		if i >= c.opts.RetryLimit {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(c.opts.RetryDelay)
	}
	if err != nil {
		return nil, err
	}

	if err = verify(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func verify(resp *http.Response) error {
	if resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
		return apiErr
	}
	return nil
}

// APIError is an error returned by one of the TradingView HTTP endpoints.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}
