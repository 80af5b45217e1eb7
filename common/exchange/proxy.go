package exchange

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"torrent-info/common/errs"

	"github.com/juju/errors"
	"golang.org/x/net/proxy"
)

func init() {
	proxy.RegisterDialerType("http", newConnectDialer)
	proxy.RegisterDialerType("https", newConnectDialer)
}

// ParseProxy validates a proxy URL and builds a dialer for it.
func ParseProxy(raw string) (*url.URL, proxy.Dialer, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindInvalid, err, "invalid proxy url")
	}
	if u.Host == "" {
		return nil, nil, errs.Invalidf("proxy url %q has no host", u.Redacted())
	}
	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindInvalid, err, "unsupported proxy %q", u.Redacted())
	}
	return u, d, nil
}

// connectDialer tunnels TCP through an HTTP proxy with CONNECT.
type connectDialer struct {
	proxyURL *url.URL
	forward  proxy.Dialer
}

func newConnectDialer(u *url.URL, forward proxy.Dialer) (proxy.Dialer, error) {
	return &connectDialer{proxyURL: u, forward: forward}, nil
}

func (d *connectDialer) proxyAddr() string {
	if d.proxyURL.Port() != "" {
		return d.proxyURL.Host
	}
	if d.proxyURL.Scheme == "https" {
		return net.JoinHostPort(d.proxyURL.Hostname(), "443")
	}
	return net.JoinHostPort(d.proxyURL.Hostname(), "80")
}

func (d *connectDialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

func (d *connectDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, errors.Errorf("network %s cannot go through an http proxy", network)
	}
	conn, err := dialContext(ctx, d.forward, d.proxyAddr())
	if err != nil {
		return nil, errors.Trace(err)
	}
	if d.proxyURL.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: d.proxyURL.Hostname()})
		if err = tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, errors.Trace(err)
		}
		conn = tlsConn
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}
	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if user := d.proxyURL.User; user != nil {
		pass, _ := user.Password()
		cred := base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + pass))
		req.Header.Set("Proxy-Authorization", "Basic "+cred)
	}
	if err = req.Write(conn); err != nil {
		conn.Close()
		return nil, errors.Trace(err)
	}
	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, errors.Trace(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, errors.Errorf("proxy refused CONNECT to %s: %s", addr, resp.Status)
	}
	if br.Buffered() > 0 {
		return &bufferedConn{Conn: conn, r: br}, nil
	}
	return conn, nil
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// peerDialer routes outgoing peer connections through a proxy dialer.
type peerDialer struct {
	d proxy.Dialer
}

func (p peerDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	return dialContext(ctx, p.d, addr)
}

func (p peerDialer) DialerNetwork() string {
	return "tcp"
}

func dialContext(ctx context.Context, d proxy.Dialer, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return d.Dial("tcp", addr)
}
