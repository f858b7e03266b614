package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base carries the uuid primary key and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type Role string

const (
	RoleAgent      Role = "agent"
	RoleSeller     Role = "seller"
	RoleBuyer      Role = "buyer"
	RoleSuperadmin Role = "superadmin"
)

// MemberRoles are the self-registering roles.
var MemberRoles = []Role{RoleAgent, RoleSeller, RoleBuyer}

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAgent:
		return RoleAgent, true
	case RoleSeller:
		return RoleSeller, true
	case RoleBuyer:
		return RoleBuyer, true
	case RoleSuperadmin:
		return RoleSuperadmin, true
	}
	return "", false
}

// IsMember reports whether the role is one of agent, seller or buyer.
func (r Role) IsMember() bool {
	return r == RoleAgent || r == RoleSeller || r == RoleBuyer
}

// Account holds the login columns each role table shares.
type Account struct {
	Base
	Username       string     `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email          string     `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	PasswordHash   string     `gorm:"type:text;not null" json:"-"`
	FirstName      string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName       string     `gorm:"type:varchar(150)" json:"last_name"`
	PhoneNumber    string     `gorm:"type:varchar(20)" json:"phone_number"`
	ProfilePicture string     `gorm:"type:text" json:"profile_picture,omitempty"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// Prepare normalises the columns lookups match on. It is idempotent: values are
// stored as typed and escaped only when rendered.
func (a *Account) Prepare() {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
}

// FullName falls back to the username when no name is set.
func (a *Account) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// Principal is implemented by every role table.
type Principal interface {
	Credentials() *Account
	Role() Role
}

// NewPrincipal returns an empty row for the given role's table.
func NewPrincipal(role Role) Principal {
	switch role {
	case RoleAgent:
		return &Agent{}
	case RoleSeller:
		return &Seller{}
	case RoleBuyer:
		return &Buyer{}
	case RoleSuperadmin:
		return &Superadmin{}
	}
	return nil
}

type Availability string

const (
	AvailabilityFullTime     Availability = "full-time"
	AvailabilityPartTime     Availability = "part-time"
	AvailabilityProjectBased Availability = "project-based"
)

func (a Availability) Valid() bool {
	return a == AvailabilityFullTime || a == AvailabilityPartTime || a == AvailabilityProjectBased
}

type Agent struct {
	Account
	LicenseNumber     string                      `gorm:"type:varchar(50)" json:"license_number"`
	AgentPapers       string                      `gorm:"type:text" json:"agent_papers,omitempty"`
	About             string                      `gorm:"type:text" json:"about"`
	CompanyDetails    string                      `gorm:"type:varchar(255)" json:"company_details"`
	YearsOfExperience *int                        `json:"years_of_experience"`
	AreaOfExpertise   string                      `gorm:"type:text" json:"area_of_expertise"`
	Languages         datatypes.JSONSlice[string] `json:"languages"`
	ServiceAreas      datatypes.JSONSlice[string] `json:"service_areas"`
	PropertyTypes     datatypes.JSONSlice[string] `json:"property_types"`
	Availability      Availability                `gorm:"type:varchar(20);not null;default:'full-time'" json:"availability"`
}

func (a *Agent) Credentials() *Account { return &a.Account }
func (a *Agent) Role() Role            { return RoleAgent }

type Seller struct {
	Account
	Location          string `gorm:"type:varchar(255)" json:"location"`
	Bedrooms          *int   `json:"bedrooms"`
	Bathrooms         *int   `json:"bathrooms"`
	PropertyCondition string `gorm:"type:varchar(100)" json:"property_condition"`
}

func (s *Seller) Credentials() *Account { return &s.Account }
func (s *Seller) Role() Role            { return RoleSeller }

type Buyer struct {
	Account
	PriceRange string `gorm:"type:varchar(100)" json:"price_range"`
	Location   string `gorm:"type:varchar(255)" json:"location"`
	Bedrooms   *int   `json:"bedrooms"`
	Bathrooms  *int   `json:"bathrooms"`
}

func (b *Buyer) Credentials() *Account { return &b.Account }
func (b *Buyer) Role() Role            { return RoleBuyer }

type Superadmin struct {
	Account
}

func (s *Superadmin) Credentials() *Account { return &s.Account }
func (s *Superadmin) Role() Role            { return RoleSuperadmin }
