package httpx

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 10 * time.Second
	DefaultMaxConnsPerHost     = 64
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultReadBufferSize      = 4096
	DefaultWriteBufferSize     = 4096
	DefaultMaxResponseBodySize = 4 << 20
)

// ErrResponseTooLarge is returned when a response body exceeds the
// configured cap.
var ErrResponseTooLarge = errors.New("response body exceeds the configured limit")

type clientSettings struct {
	timeout             time.Duration
	readTimeout         time.Duration
	writeTimeout        time.Duration
	insecureSkipVerify  bool
	maxConnsPerHost     int
	maxIdleConnDuration time.Duration
	readBufferSize      int
	writeBufferSize     int
	maxResponseBodySize int
	userAgent           string
}

type FastHTTPClientOption func(*clientSettings)

// WithTimeout bounds both directions unless a read or write timeout is set.
func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(s *clientSettings) {
		s.timeout = timeout
	}
}

func WithReadTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(s *clientSettings) {
		s.readTimeout = timeout
	}
}

func WithWriteTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(s *clientSettings) {
		s.writeTimeout = timeout
	}
}

func WithInsecureSkipVerify(skip bool) FastHTTPClientOption {
	return func(s *clientSettings) {
		s.insecureSkipVerify = skip
	}
}

func WithMaxConnsPerHost(max int) FastHTTPClientOption {
	return func(s *clientSettings) {
		if max > 0 {
			s.maxConnsPerHost = max
		}
	}
}

func WithMaxIdleConnDuration(duration time.Duration) FastHTTPClientOption {
	return func(s *clientSettings) {
		if duration > 0 {
			s.maxIdleConnDuration = duration
		}
	}
}

func WithReadBufferSize(size int) FastHTTPClientOption {
	return func(s *clientSettings) {
		if size > 0 {
			s.readBufferSize = size
		}
	}
}

func WithWriteBufferSize(size int) FastHTTPClientOption {
	return func(s *clientSettings) {
		if size > 0 {
			s.writeBufferSize = size
		}
	}
}

// WithMaxResponseBodySize caps the raw (still encoded) body. Larger bodies
// fail with ErrResponseTooLarge.
func WithMaxResponseBodySize(size int) FastHTTPClientOption {
	return func(s *clientSettings) {
		if size > 0 {
			s.maxResponseBodySize = size
		}
	}
}

// WithUserAgent is sent on requests that carry no User-Agent of their own.
func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(s *clientSettings) {
		s.userAgent = userAgent
	}
}

// FastHTTPClient adapts fasthttp to the net/http shaped Client used by the
// providers and the SDK. Response bodies are decoded before they are returned.
type FastHTTPClient struct {
	client *fasthttp.Client
}

func NewFastHTTPClient(opts ...FastHTTPClientOption) Client {
	s := clientSettings{
		timeout:             DefaultTimeout,
		maxConnsPerHost:     DefaultMaxConnsPerHost,
		maxIdleConnDuration: DefaultMaxIdleConnDuration,
		readBufferSize:      DefaultReadBufferSize,
		writeBufferSize:     DefaultWriteBufferSize,
		maxResponseBodySize: DefaultMaxResponseBodySize,
	}
	for _, opt := range opts {
		opt(&s)
	}

	client := &fasthttp.Client{
		Name:                s.userAgent,
		MaxConnsPerHost:     s.maxConnsPerHost,
		MaxIdleConnDuration: s.maxIdleConnDuration,
		ReadBufferSize:      s.readBufferSize,
		WriteBufferSize:     s.writeBufferSize,
		MaxResponseBodySize: s.maxResponseBodySize,
		ReadTimeout:         firstPositive(s.readTimeout, s.timeout),
		WriteTimeout:        firstPositive(s.writeTimeout, s.timeout),
	}
	if s.insecureSkipVerify {
		client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in for self-hosted model endpoints
		}
	}
	return &FastHTTPClient{client: client}
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(fastReq)
	if err := copyRequest(fastReq, req); err != nil {
		return nil, err
	}

	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(fastResp)
	if err := c.client.Do(fastReq, fastResp); err != nil {
		if errors.Is(err, fasthttp.ErrBodyTooLarge) {
			return nil, ErrResponseTooLarge
		}
		return nil, err
	}
	return toResponse(req, fastResp)
}

func copyRequest(dst *fasthttp.Request, req *http.Request) error {
	if req.URL != nil {
		dst.SetRequestURI(req.URL.String())
	}
	dst.Header.SetMethod(req.Method)
	switch {
	case req.Host != "":
		dst.Header.SetHost(req.Host)
	case req.URL != nil && req.URL.Host != "":
		dst.Header.SetHost(req.URL.Host)
	}
	for key, values := range req.Header {
		for i, value := range values {
			if i == 0 {
				dst.Header.Set(key, value)
				continue
			}
			dst.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept-Encoding") == "" {
		dst.Header.Set("Accept-Encoding", AcceptEncoding)
	}

	if req.Body == nil {
		return nil
	}
	defer func() { _ = req.Body.Close() }()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	dst.SetBodyRaw(body)
	return nil
}

// toResponse copies everything out of src, which is recycled once Do returns.
func toResponse(req *http.Request, src *fasthttp.Response) (*http.Response, error) {
	encoding := string(src.Header.Peek("Content-Encoding"))
	body, err := DecodeBody(encoding, append([]byte(nil), src.Body()...))
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	src.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})
	if encoding != "" {
		headers.Del("Content-Encoding")
		headers.Del("Content-Length")
	}

	status := src.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func firstPositive(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
