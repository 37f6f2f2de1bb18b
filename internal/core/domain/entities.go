package domain

import (
	"encoding/json"
	"time"
)

// User is a registered mapper.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Communities  []string  `json:"communities,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Community is a collaborative group mapping urban green spaces.
type Community struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"created_by"`
	Members     []UserRef  `json:"members,omitempty"`
	Zones       []ZoneRef  `json:"zones,omitempty"`
	MemberCount int        `json:"member_count"`
	ZoneCount   int        `json:"zone_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// CommunityRef is the public projection of a community embedded in a zone.
type CommunityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GreenZone is a mapped urban area with vegetation.
type GreenZone struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Coordinates   json.RawMessage `json:"coordinates"` // GeoJSON Polygon geometry
	CoverageLevel CoverageLevel   `json:"coverage_level"`
	Verified      bool            `json:"verified"`
	CommunityID   string          `json:"community_id,omitempty"`
	CreatedByID   string          `json:"created_by_id,omitempty"`
	Community     *CommunityRef   `json:"community,omitempty"`
	CreatedBy     *UserRef        `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ZoneRef is the public projection of a zone embedded in a community.
type ZoneRef struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Coordinates   json.RawMessage `json:"coordinates,omitempty"`
	CoverageLevel CoverageLevel   `json:"coverage_level"`
	Verified      bool            `json:"verified"`
}

// ZoneFilter narrows zone listings and counts. Nil/empty fields match everything.
type ZoneFilter struct {
	Verified      *bool
	CoverageLevel CoverageLevel
}

// Verification is a photographic confirmation that planting occurred in a zone.
type Verification struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id"`
	ImageURL   string    `json:"image_url"`
	VerifiedBy string    `json:"verified_by"`
	Notes      string    `json:"notes,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}

// AuthSession is returned on register and login.
type AuthSession struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
