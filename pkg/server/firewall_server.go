package server

import (
	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	FirewallServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	FirewallServer struct {
		*BaseServer
	}
)

// NewFirewallServer registers health and metrics ahead of the API
// middleware chain.
func NewFirewallServer(di FirewallServerDI) *FirewallServer {
	s := &FirewallServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	s.WithRouters(di.Routers...)
	return s
}

func (s *FirewallServer) Run() error {
	return s.listen()
}
