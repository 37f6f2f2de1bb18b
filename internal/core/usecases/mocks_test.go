package usecases_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	createFn     func(ctx context.Context, u *domain.User) error
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

// --- Mock CommunityRepository ---

type mockCommunityRepo struct {
	createFn    func(ctx context.Context, c *domain.Community) error
	getByIDFn   func(ctx context.Context, id string) (*domain.Community, error)
	listFn      func(ctx context.Context) ([]domain.Community, error)
	addMemberFn func(ctx context.Context, communityID, userID string) error
}

func (m *mockCommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockCommunityRepo) GetByID(ctx context.Context, id string) (*domain.Community, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCommunityRepo) List(ctx context.Context) ([]domain.Community, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCommunityRepo) AddMember(ctx context.Context, communityID, userID string) error {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, communityID, userID)
	}
	return nil
}

// --- Mock GreenZoneRepository ---

type mockZoneRepo struct {
	createFn       func(ctx context.Context, z *domain.GreenZone) error
	getByIDFn      func(ctx context.Context, id string) (*domain.GreenZone, error)
	listFn         func(ctx context.Context, f domain.ZoneFilter) ([]domain.GreenZone, error)
	markVerifiedFn func(ctx context.Context, id string) error
}

func (m *mockZoneRepo) Create(ctx context.Context, z *domain.GreenZone) error {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.GreenZone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockZoneRepo) List(ctx context.Context, f domain.ZoneFilter) ([]domain.GreenZone, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockZoneRepo) MarkVerified(ctx context.Context, id string) error {
	if m.markVerifiedFn != nil {
		return m.markVerifiedFn(ctx, id)
	}
	return nil
}

// --- Mock VerificationRepository ---

type mockVerificationRepo struct {
	createFn func(ctx context.Context, v *domain.Verification) error
	listFn   func(ctx context.Context) ([]domain.Verification, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockVerificationRepo) Create(ctx context.Context, v *domain.Verification) error {
	if m.createFn != nil {
		return m.createFn(ctx, v)
	}
	return nil
}

func (m *mockVerificationRepo) List(ctx context.Context) ([]domain.Verification, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockVerificationRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- In-memory cache ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Recording event publisher ---

type recordingPublisher struct {
	mu          sync.Mutex
	zones       []*domain.GreenZone
	verified    []*domain.Verification
	communities []*domain.Community
	err         error
}

func (p *recordingPublisher) PublishZoneCreated(ctx context.Context, z *domain.GreenZone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zones = append(p.zones, z)
	return p.err
}

func (p *recordingPublisher) PublishZoneVerified(ctx context.Context, v *domain.Verification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified = append(p.verified, v)
	return p.err
}

func (p *recordingPublisher) PublishCommunityCreated(ctx context.Context, c *domain.Community) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.communities = append(p.communities, c)
	return p.err
}

// --- In-memory image store ---

type memImageStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMemImageStore() *memImageStore {
	return &memImageStore{files: map[string][]byte{}}
}

func (s *memImageStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = buf.Bytes()
	return "/uploads/" + name, nil
}

func (s *memImageStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

// --- Token issuer ---

type stubTokens struct{ err error }

func (s stubTokens) GenerateToken(userID, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + userID, nil
}
