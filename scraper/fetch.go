package scraper

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/productinfo/config"
)

// errTooManyRedirects is returned from CheckRedirect once the cap is hit.
var errTooManyRedirects = errors.New("too many redirects")

// errBodyTooLarge is returned when the page exceeds FetchConfig.MaxBodyBytes.
var errBodyTooLarge = errors.New("response body too large")

// chromeH1Spec builds a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. utls shares the slice and pointer fields of a spec with every
// connection it is applied to, so each dial needs its own.
func chromeH1Spec() (tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return tls.ClientHelloSpec{}, fmt.Errorf("fetch: chrome tls spec: %w", err)
	}
	// net/http cannot speak h2 over a utls conn, so never offer it.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return spec, nil
}

// page is the raw result of a successful fetch.
type page struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
}

// pageFetcher issues the single GET a product lookup needs, dressed up as a
// desktop browser.
type pageFetcher struct {
	client *http.Client
	cfg    config.FetchConfig
}

// newPageFetcher creates a fetcher. rootCAs overrides the system roots for
// the fingerprinted TLS dialer; nil means system roots.
func newPageFetcher(cfg config.FetchConfig, rootCAs *x509.CertPool) *pageFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLSFingerprint {
		transport.DialTLSContext = chromeDialer(rootCAs)
		transport.ForceAttemptHTTP2 = false
	}

	maxRedirects := cfg.MaxRedirects
	return &pageFetcher{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

// fetch retrieves targetURL. Any transport failure or non-2xx status is an
// error; the caller decides how much of it to expose.
func (f *pageFetcher) fetch(ctx context.Context, targetURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	limit := f.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("fetch: %w: over %d bytes", errBodyTooLarge, limit)
	}

	return &page{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

func (f *pageFetcher) close() {
	f.client.CloseIdleConnections()
}

// chromeDialer returns a DialTLSContext func that handshakes with a fresh
// Chrome fingerprint per connection.
func chromeDialer(rootCAs *x509.CertPool) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		spec, err := chromeH1Spec()
		if err != nil {
			return nil, err
		}

		dialer := &net.Dialer{Timeout: 10 * time.Second}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, _ := net.SplitHostPort(addr)
		tlsConn := tls.UClient(conn, &tls.Config{ServerName: host, RootCAs: rootCAs}, tls.HelloCustom)
		if err := tlsConn.ApplyPreset(&spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}
