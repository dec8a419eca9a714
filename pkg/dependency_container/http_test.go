package dependency_container

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientOptions_AppliesFirewallHTTPConfig(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Firewall.HTTP = config.HTTPClientConfig{
		ReadTimeout:         time.Second,
		WriteTimeout:        time.Second,
		MaxResponseBodySize: 16,
	}
	client := httpx.NewFastHTTPClient(httpClientOptions(cfg)...)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/small", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, version.AppName+"/"+version.Version, gotUA)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/big", nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	assert.True(t, errors.Is(err, httpx.ErrResponseTooLarge))
}

func TestHTTPClientOptions_CustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Firewall.HTTP.UserAgent = "edge-firewall/2"
	client := httpx.NewFastHTTPClient(httpClientOptions(cfg)...)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "edge-firewall/2", gotUA)
}

func TestMaxTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, maxTimeout(2*time.Second, 15*time.Second))
	assert.Equal(t, time.Minute, maxTimeout(2*time.Second, time.Minute))
}
