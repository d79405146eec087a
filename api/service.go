package api

import (
	"fmt"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/serviceiface"
)

// GatewayService runs the public HTTP entry point and proxies to the
// statements service.
type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	port := 8081
	if p, ok := s.config["port"].(int); ok && p > 0 {
		port = p
	}
	target := fmt.Sprintf("http://localhost:%d", 7143)
	if t, ok := s.config["statements_target"].(string); ok && t != "" {
		target = t
	}
	go StartGateway(port, target)
	return nil
}

func (s *GatewayService) Stop() error {
	return nil
}
