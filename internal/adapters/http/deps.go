package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/greenmap/internal/core/usecases"
	"github.com/samirrijal/greenmap/internal/pkg/auth"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Detection     *usecases.DetectionService
	Dashboard     *usecases.DashboardService
	Auth          *usecases.AuthService
	Communities   *usecases.CommunityService
	Zones         *usecases.GreenZoneService
	Verifications *usecases.VerificationService
	Tokens        TokenValidator
	NATS          *nats.Conn
	DB            Pinger
	Cache         Pinger
	UploadDir     string
	CORSOrigins   string
	Version       string
}
