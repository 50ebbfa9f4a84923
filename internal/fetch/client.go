package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds the redirects followed for one request.
const maxRedirects = 10

// NewHTTPClient creates the HTTP client used for fetching.
//
// When proxyAddress is non-empty ("host:port") all connections go through
// that SOCKS5 proxy. The timeout bounds each request including reading the
// body.
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport

	if proxyAddress != "" {
		if !IsValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}

		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}

		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}, nil
}

// IsValidProxyAddress reports whether address is in "host:port" format
// with a port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
