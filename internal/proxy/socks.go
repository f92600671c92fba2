// Package proxy builds the outbound HTTP client. Deployments that cannot
// reach the OpenAI API directly route it through a local SOCKS5 proxy.
package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

func NewSocksClient(socksAddr string) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}

	// speech synthesis responses can be slow; allow generous timeouts
	return &http.Client{
		Transport: transport,
		Timeout:   120 * time.Second,
	}, nil
}
