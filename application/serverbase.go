package application

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spymsg/spymsg-go/protocol"
)

// Limits of a single client connection.
const (
	maxRequestSize = 8192
	connTimeout    = 5 * time.Second
)

// A ServerAddress describes a server's connection.
// It supports two types of connections: a TCP connection ("tcp")
// and a Unix socket connection ("unix").
//
// Additionally, TCP connections must use TLS for added security,
// and each is required to specify a TLS certificate and corresponding
// private key.
type ServerAddress struct {
	// Address is formatted as a url: scheme://address.
	Address string `toml:"address" yaml:"address" validate:"required"`
	// TLSCertPath is a path to the server's TLS Certificate,
	// which has to be set if the connection is TCP.
	TLSCertPath string `toml:"cert,omitempty" yaml:"cert,omitempty"`
	// TLSKeyPath is a path to the server's TLS private key,
	// which has to be set if the connection is TCP.
	TLSKeyPath string `toml:"key,omitempty" yaml:"key,omitempty"`
}

// A ServerBaseConfig contains the configuration shared by every
// server: the common config and the optional address of the
// Prometheus metrics endpoint, e.g. "127.0.0.1:9100".
type ServerBaseConfig struct {
	*CommonConfig  `yaml:",inline"`
	MetricsAddress string `toml:"metrics_address,omitempty" yaml:"metrics_address,omitempty" env:"METRICS_ADDRESS" validate:"omitempty,hostname_port"`
}

// A RequestHandler handles a decoded request. ctx is cancelled when
// the connection times out or the server shuts down.
type RequestHandler func(ctx context.Context, req *protocol.Request) *protocol.Response

// A ServerBase represents the base features needed to implement
// a registry server.
// It wraps a request handler with a network layer which
// handles requests/responses and their encoding/decoding.
// A ServerBase also supports concurrent handling of requests:
// read requests share a read lock, while write requests hold the
// write lock, so a handler never observes a half-applied write.
type ServerBase struct {
	Verb           string
	acceptableReqs map[*ServerAddress]map[int]bool
	writeReqs      map[int]bool

	logger *Logger
	sync.RWMutex

	ctx           context.Context
	cancel        context.CancelFunc
	stop          chan struct{}
	waitStop      sync.WaitGroup
	waitCloseConn sync.WaitGroup

	configFilePath string
	configEncoding string

	metrics        *prometheus.Registry
	metricsAddress string
	metricsServer  *http.Server
	requests       *prometheus.CounterVec
}

// NewServerBase creates a new generic server base. perms lists the
// request types each address accepts; writes lists the request types
// that modify the server's state.
func NewServerBase(conf *ServerBaseConfig, listenVerb string,
	perms map[*ServerAddress]map[int]bool, writes map[int]bool) (*ServerBase, error) {
	logger, err := NewLogger(conf.Logger)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spymsg",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Handled requests by type and result code",
	}, []string{"type", "result"})
	reg.MustRegister(requests)

	ctx, cancel := context.WithCancel(context.Background())
	return &ServerBase{
		Verb:           listenVerb,
		acceptableReqs: perms,
		writeReqs:      writes,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		stop:           make(chan struct{}),
		configFilePath: conf.Path,
		configEncoding: conf.Encoding,
		metrics:        reg,
		metricsAddress: conf.MetricsAddress,
		requests:       requests,
	}, nil
}

// ListenAndHandle listens at the given server address and serves
// every accepted connection with handler in the background.
func (sb *ServerBase) ListenAndHandle(addr *ServerAddress, handler RequestHandler) error {
	ln, tlsConfig, err := addr.resolveAndListen()
	if err != nil {
		return err
	}
	verb := sb.Verb
	sb.waitStop.Add(1)
	go func() {
		sb.logger.Info(verb, "address", addr.Address)
		sb.acceptRequests(addr, ln, tlsConfig, handler)
		sb.waitStop.Done()
	}()
	return nil
}

func (addr *ServerAddress) resolveAndListen() (net.Listener, *tls.Config, error) {
	u, err := url.Parse(addr.Address)
	if err != nil {
		return nil, nil, err
	}
	switch u.Scheme {
	case "tcp":
		// force to use TLS
		cer, err := tls.LoadX509KeyPair(addr.TLSCertPath, addr.TLSKeyPath)
		if err != nil {
			return nil, nil, err
		}
		ln, err := net.Listen(u.Scheme, u.Host)
		if err != nil {
			return nil, nil, err
		}
		return ln, &tls.Config{Certificates: []tls.Certificate{cer}}, nil
	case "unix":
		ln, err := net.Listen(u.Scheme, u.Path)
		if err != nil {
			return nil, nil, err
		}
		return ln, nil, nil
	default:
		return nil, nil, fmt.Errorf("Unknown network type %q", u.Scheme)
	}
}

func (sb *ServerBase) acceptRequests(addr *ServerAddress, ln net.Listener,
	tlsConfig *tls.Config, handler RequestHandler) {
	defer ln.Close()
	go func() {
		<-sb.stop
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-sb.stop:
				sb.waitCloseConn.Wait()
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			sb.logger.Error(err.Error())
			continue
		}
		if tlsConfig != nil {
			conn = tls.Server(conn, tlsConfig)
		}
		sb.waitCloseConn.Add(1)
		go func() {
			sb.acceptClient(addr, conn, handler)
			sb.waitCloseConn.Done()
		}()
	}
}

// checkRequestType verifies that the server is allowed to handle
// the given Request message type at the given address.
// If reqType is not acceptable, checkRequestType() returns a
// protocol.ErrMalformedMessage, otherwise it returns nil.
func (sb *ServerBase) checkRequestType(addr *ServerAddress,
	reqType int) error {
	if !sb.acceptableReqs[addr][reqType] {
		sb.logger.Error("Unacceptable message type",
			"request type", reqType, "address", addr.Address)
		return protocol.ErrMalformedMessage
	}
	return nil
}

// handle runs handler on req under the lock its type requires.
func (sb *ServerBase) handle(ctx context.Context, req *protocol.Request,
	handler RequestHandler) *protocol.Response {
	if sb.writeReqs[req.Type] {
		sb.Lock()
		defer sb.Unlock()
	} else {
		sb.RLock()
		defer sb.RUnlock()
	}
	return handler(ctx, req)
}

func (sb *ServerBase) acceptClient(addr *ServerAddress, conn net.Conn,
	handler RequestHandler) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))
	ctx, cancel := context.WithTimeout(sb.ctx, connTimeout)
	defer cancel()

	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, conn, maxRequestSize); err != nil && err != io.EOF {
		sb.logger.Error(err.Error(),
			"address", conn.RemoteAddr().String())
		return
	}

	reqType := "unknown"
	var response *protocol.Response
	req, err := UnmarshalRequest(buf.Bytes())
	if err != nil {
		sb.logger.Warn("Malformed request", "error", err.Error(),
			"address", conn.RemoteAddr().String())
		response = malformedClientMsg(err)
	} else if err := sb.checkRequestType(addr, req.Type); err != nil {
		reqType = strconv.Itoa(req.Type)
		response = malformedClientMsg(err)
	} else {
		reqType = strconv.Itoa(req.Type)
		response = sb.handle(ctx, req, handler)
	}
	sb.requests.WithLabelValues(reqType, strconv.Itoa(int(response.Error))).Inc()

	res, err := MarshalResponse(response)
	if err != nil {
		panic(err)
	}
	if _, err := conn.Write(res); err != nil {
		sb.logger.Error(err.Error(),
			"address", conn.RemoteAddr().String())
	}
}

// ServeMetrics starts the Prometheus endpoint at /metrics if a metrics
// address is configured. It returns once the listener is bound.
func (sb *ServerBase) ServeMetrics() error {
	if sb.metricsAddress == "" {
		return nil
	}
	ln, err := net.Listen("tcp", sb.metricsAddress)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(sb.metrics, promhttp.HandlerOpts{}))
	sb.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: connTimeout,
	}
	sb.metricsAddress = ln.Addr().String()
	sb.logger.Info("Serving metrics", "address", sb.metricsAddress)
	sb.RunInBackground(func() {
		if err := sb.metricsServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			sb.logger.Error(err.Error(), "address", sb.metricsAddress)
		}
	})
	return nil
}

// RunInBackground creates a new goroutine that calls function `f`.
// It automatically increments the counter `sync.WaitGroup` of the
// `ServerBase` and calls `Done` when the function execution is finished.
func (sb *ServerBase) RunInBackground(f func()) {
	sb.waitStop.Add(1)
	go func() {
		f()
		sb.waitStop.Done()
	}()
}

// Logger returns the server base's logger instance.
func (sb *ServerBase) Logger() *Logger {
	return sb.logger
}

// Metrics returns the registry the server's metrics are registered
// with.
func (sb *ServerBase) Metrics() *prometheus.Registry {
	return sb.metrics
}

// ConfigInfo returns the server base's config file path and encoding.
func (sb *ServerBase) ConfigInfo() (string, string) {
	return sb.configFilePath, sb.configEncoding
}

// Shutdown closes all of the server's connections and shuts down the server.
func (sb *ServerBase) Shutdown() error {
	close(sb.stop)
	sb.cancel()
	var err error
	if sb.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		err = sb.metricsServer.Shutdown(ctx)
		cancel()
	}
	sb.waitStop.Wait()
	return err
}
