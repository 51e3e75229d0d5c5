package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
)

// maxResponseSize bounds the size of a server response. An event list
// can be far larger than a request.
const maxResponseSize = 16 << 20

// A Transport sends one request per connection to a registry server,
// over a unix socket or a TLS connection.
type Transport struct {
	network string
	address string
	tls     *tls.Config
}

// NewTransport returns a Transport for the server at address, given
// as a url "unix:///path/to/socket" or "tcp://host:port".
// TCP connections use TLS; if serverCert is not empty, the server's
// certificate must chain up to it.
func NewTransport(address, serverCert string) (*Transport, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "unix":
		return &Transport{network: "unix", address: u.Path}, nil
	case "tcp":
		conf := &tls.Config{ServerName: u.Hostname()}
		if serverCert != "" {
			pem, err := os.ReadFile(serverCert)
			if err != nil {
				return nil, err
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("No certificate found in %s", serverCert)
			}
			conf.RootCAs = pool
		}
		return &Transport{network: "tcp", address: u.Host, tls: conf}, nil
	default:
		return nil, fmt.Errorf("Unknown network type %q", u.Scheme)
	}
}

// Send writes msg to the server and returns its reply.
func (tr *Transport) Send(ctx context.Context, msg []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, tr.network, tr.address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	var stream interface {
		io.ReadWriter
		CloseWrite() error
	}
	switch c := conn.(type) {
	case *net.UnixConn:
		stream = c
	case *net.TCPConn:
		tlsConn := tls.Client(c, tr.tls)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		stream = tlsConn
	default:
		return nil, errors.New("Unsupported connection type")
	}

	if _, err := stream.Write(msg); err != nil {
		return nil, err
	}
	if err := stream.CloseWrite(); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(stream, maxResponseSize))
}
