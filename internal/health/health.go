// Package health levanta el servidor gRPC con el servicio estándar de salud.
package health

import (
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// CatalogService es el nombre reportado una vez cargado el catálogo.
const CatalogService = "ferreriwork.catalog"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func New() *Server {
	s := &Server{grpc: grpc.NewServer(), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.health.SetServingStatus(CatalogService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) SetServing(service string) {
	s.health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
}

// Serve bloquea hasta Stop.
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("[health] gRPC listening")
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
