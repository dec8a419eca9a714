package dependency_container

import (
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/version"
)

// httpClientOptions maps firewall.http onto the provider client. The overall
// timeout covers the slowest configured tier.
func httpClientOptions(cfg *config.Config) []httpx.FastHTTPClientOption {
	h := cfg.Firewall.HTTP
	userAgent := h.UserAgent
	if userAgent == "" {
		userAgent = version.AppName + "/" + version.Version
	}
	return []httpx.FastHTTPClientOption{
		httpx.WithTimeout(maxTimeout(cfg.Firewall.Tier1.Timeout, cfg.Firewall.Tier2.Timeout, cfg.Downstream.Timeout)),
		httpx.WithReadTimeout(h.ReadTimeout),
		httpx.WithWriteTimeout(h.WriteTimeout),
		httpx.WithInsecureSkipVerify(h.InsecureSkipVerify),
		httpx.WithMaxConnsPerHost(h.MaxConnsPerHost),
		httpx.WithMaxIdleConnDuration(h.MaxIdleConnDuration),
		httpx.WithReadBufferSize(h.ReadBufferSize),
		httpx.WithWriteBufferSize(h.WriteBufferSize),
		httpx.WithMaxResponseBodySize(h.MaxResponseBodySize),
		httpx.WithUserAgent(userAgent),
	}
}

func maxTimeout(values ...time.Duration) time.Duration {
	out := 30 * time.Second
	for _, v := range values {
		if v > out {
			out = v
		}
	}
	return out
}
