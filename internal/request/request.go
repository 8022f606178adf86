package request

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	"github.com/mecolosimo/progressbar/internal/logger"
)

// request.go provides the HTTP client the fetch command downloads
// through, with optional HTTP or SOCKS5 proxying.

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// Client is a thin HTTP client for single-shot downloads.
type Client struct {
	client    *http.Client
	timeout   time.Duration
	proxy     string
	logger    zerolog.Logger
	loggerSet bool
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithProxy routes requests through a proxy URL. The http, https, and
// socks5 schemes are supported.
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxy = proxyURL
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
		c.loggerSet = true
	}
}

// New creates a download client. A proxy URL that cannot be used is a
// construction error; the client never falls back to a direct
// connection the caller did not ask for.
func New(options ...ClientOption) (*Client, error) {
	c := &Client{
		timeout: 60 * time.Second,
	}

	for _, option := range options {
		option(c)
	}

	if !c.loggerSet {
		c.logger = logger.New("request")
	}

	transport, err := buildTransport(c.proxy)
	if err != nil {
		return nil, err
	}

	c.client = &http.Client{
		Timeout:   c.timeout,
		Transport: transport,
	}

	return c, nil
}

// buildTransport builds the transport for the configured proxy. An
// empty proxy defers to the standard proxy environment variables.
func buildTransport(proxyAddr string) (*http.Transport, error) {
	transport := &http.Transport{}

	if proxyAddr == "" {
		transport.Proxy = http.ProxyFromEnvironment
		return transport, nil
	}

	proxyURL, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	if strings.EqualFold(proxyURL.Scheme, "socks5") {
		var auth *proxy.Auth
		if proxyURL.User != nil {
			password, _ := proxyURL.User.Password()
			auth = &proxy.Auth{
				User:     proxyURL.User.Username(),
				Password: password,
			}
		}

		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}

		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
		return transport, nil
	}

	transport.Proxy = http.ProxyURL(proxyURL)
	return transport, nil
}

// Get issues a GET request and returns the response on a 2xx status.
// The caller owns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating GET request: %w", err)
	}

	c.logger.Debug().Str("url", rawURL).Msg("GET request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error %d for %s", resp.StatusCode, rawURL)
	}

	return resp, nil
}
