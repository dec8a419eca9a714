package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding is advertised on outgoing requests; DecodeBody understands all of it.
const AcceptEncoding = "gzip, br, zstd, deflate"

var decoders = map[string]func([]byte) ([]byte, error){
	"br": func(b []byte) ([]byte, error) {
		return io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
	},
	"gzip": func(b []byte) ([]byte, error) {
		gr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	},
	"zstd": func(b []byte) ([]byte, error) {
		dec, err := zstd.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	},
	"deflate": func(b []byte) ([]byte, error) {
		// RFC 9110 says zlib-wrapped, some servers send raw deflate
		if zr, err := zlib.NewReader(bytes.NewReader(b)); err == nil {
			defer zr.Close()
			return io.ReadAll(zr)
		}
		fr := flate.NewReader(bytes.NewReader(b))
		defer fr.Close()
		return io.ReadAll(fr)
	},
}

// DecodeBody undoes a Content-Encoding chain such as "gzip, br". Encodings
// are removed in reverse order of application.
func DecodeBody(contentEncoding string, body []byte) ([]byte, error) {
	if contentEncoding == "" {
		return body, nil
	}
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.TrimSpace(strings.ToLower(codings[i]))
		if coding == "" || coding == "identity" {
			continue
		}
		decode, ok := decoders[coding]
		if !ok {
			return nil, fmt.Errorf("unsupported content-encoding: %q", coding)
		}
		out, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", coding, err)
		}
		body = out
	}
	return body, nil
}
