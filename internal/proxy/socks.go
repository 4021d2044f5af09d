// Package proxy builds HTTP clients that tunnel API traffic through a
// SOCKS5 endpoint.
package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

const defaultTimeout = 120 * time.Second

// NewSocksClient returns an HTTP client dialing through the SOCKS5 proxy at
// socksAddr. A non-positive timeout keeps the default, sized for long
// generation calls.
func NewSocksClient(socksAddr string, timeout time.Duration) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("dial socks proxy: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		},
		Timeout: timeout,
	}, nil
}
