package ports

import (
	"context"
	"io"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishZoneCreated(ctx context.Context, zone *domain.GreenZone) error
	PublishZoneVerified(ctx context.Context, v *domain.Verification) error
	PublishCommunityCreated(ctx context.Context, c *domain.Community) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ImageStore keeps uploaded verification photos.
type ImageStore interface {
	// Save writes the image under name and returns its public URL.
	Save(ctx context.Context, name string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, name string) error
}

// TokenIssuer signs and validates session tokens.
type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

// VerificationWorkflow durably records a planting verification whose photo
// is already stored, rolling back every completed step on failure. Start
// returns once the run is accepted; the steps complete asynchronously.
type VerificationWorkflow interface {
	StartPlantingVerification(ctx context.Context, v *domain.Verification, imageName string) error
}
