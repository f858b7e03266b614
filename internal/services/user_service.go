package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
)

// ProfileInput carries optional profile fields. Nil means unchanged. Fields that
// do not apply to the account's role are ignored.
type ProfileInput struct {
	Username    *string `json:"username" form:"username"`
	Email       *string `json:"email" form:"email"`
	FirstName   *string `json:"first_name" form:"first_name"`
	LastName    *string `json:"last_name" form:"last_name"`
	PhoneNumber *string `json:"phone_number" form:"phone_number"`

	LicenseNumber     *string  `json:"license_number" form:"license_number"`
	About             *string  `json:"about" form:"about"`
	CompanyDetails    *string  `json:"company_details" form:"company_details"`
	YearsOfExperience *int     `json:"years_of_experience" form:"years_of_experience"`
	AreaOfExpertise   *string  `json:"area_of_expertise" form:"area_of_expertise"`
	Languages         []string `json:"languages" form:"languages"`
	ServiceAreas      []string `json:"service_areas" form:"service_areas"`
	PropertyTypes     []string `json:"property_types" form:"property_types"`
	Availability      *string  `json:"availability" form:"availability"`

	Location          *string `json:"location" form:"location"`
	PropertyCondition *string `json:"property_condition" form:"property_condition"`
	PriceRange        *string `json:"price_range" form:"price_range"`
	Bedrooms          *int    `json:"bedrooms" form:"bedrooms"`
	Bathrooms         *int    `json:"bathrooms" form:"bathrooms"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// apply copies the set fields onto p.
func (in ProfileInput) apply(p models.Principal) error {
	acc := p.Credentials()
	setString(&acc.Username, in.Username)
	setString(&acc.Email, in.Email)
	setString(&acc.FirstName, in.FirstName)
	setString(&acc.LastName, in.LastName)
	setString(&acc.PhoneNumber, in.PhoneNumber)

	switch u := p.(type) {
	case *models.Agent:
		setString(&u.LicenseNumber, in.LicenseNumber)
		setString(&u.About, in.About)
		setString(&u.CompanyDetails, in.CompanyDetails)
		setString(&u.AreaOfExpertise, in.AreaOfExpertise)
		if in.YearsOfExperience != nil {
			if *in.YearsOfExperience < 0 {
				return invalid("years_of_experience cannot be negative")
			}
			u.YearsOfExperience = in.YearsOfExperience
		}
		if in.Languages != nil {
			u.Languages = datatypes.JSONSlice[string](in.Languages)
		}
		if in.ServiceAreas != nil {
			u.ServiceAreas = datatypes.JSONSlice[string](in.ServiceAreas)
		}
		if in.PropertyTypes != nil {
			u.PropertyTypes = datatypes.JSONSlice[string](in.PropertyTypes)
		}
		if in.Availability != nil {
			a := models.Availability(*in.Availability)
			if !a.Valid() {
				return invalid("availability must be one of full-time, part-time, project-based")
			}
			u.Availability = a
		}
	case *models.Seller:
		setString(&u.Location, in.Location)
		setString(&u.PropertyCondition, in.PropertyCondition)
		if in.Bedrooms != nil {
			u.Bedrooms = in.Bedrooms
		}
		if in.Bathrooms != nil {
			u.Bathrooms = in.Bathrooms
		}
	case *models.Buyer:
		setString(&u.Location, in.Location)
		setString(&u.PriceRange, in.PriceRange)
		if in.Bedrooms != nil {
			u.Bedrooms = in.Bedrooms
		}
		if in.Bathrooms != nil {
			u.Bathrooms = in.Bathrooms
		}
	}
	return nil
}

// UserService manages an account's own profile.
type UserService struct {
	store   *repositories.Store
	storage storage.Storage
}

func NewUserService(store *repositories.Store, st storage.Storage) *UserService {
	return &UserService{store: store, storage: st}
}

func (s *UserService) GetProfile(ctx context.Context, role models.Role, id uuid.UUID) (models.Principal, error) {
	p, err := s.store.Accounts.FindByID(ctx, role, id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil {
		return nil, notFound("User not found")
	}
	return p, nil
}

// UpdateProfile applies in and, when picture is set, replaces the profile picture.
func (s *UserService) UpdateProfile(ctx context.Context, role models.Role, id uuid.UUID, in ProfileInput, picture *storage.File) (models.Principal, error) {
	p, err := s.GetProfile(ctx, role, id)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.store, role, in, id); err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}

	acc := p.Credentials()
	old := acc.ProfilePicture
	if picture != nil {
		name, err := s.storage.Save("profile_pictures/"+string(role), *picture)
		if err != nil {
			return nil, fmt.Errorf("store profile picture: %w", err)
		}
		acc.ProfilePicture = name
	}
	if err := s.store.Accounts.Save(ctx, p); err != nil {
		return nil, accountWriteError("save", role, err)
	}
	if picture != nil && old != "" {
		_ = s.storage.Delete(old)
	}
	return p, nil
}

// accountWriteError turns a unique index violation, a lost race with another
// signup or rename, into the conflict ensureUnique would have reported.
func accountWriteError(op string, role models.Role, err error) error {
	if repositories.IsDuplicate(err) {
		return conflict("A user with this username or email already exists")
	}
	return fmt.Errorf("%s %s: %w", op, role, err)
}

// ensureUnique rejects a username or email another account of the role already uses.
func ensureUnique(ctx context.Context, store *repositories.Store, role models.Role, in ProfileInput, self uuid.UUID) error {
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		taken, err := store.Accounts.Taken(ctx, role, "email", email, self)
		if err != nil {
			return err
		}
		if taken {
			return conflict("A user with this email already exists")
		}
	}
	if in.Username != nil {
		taken, err := store.Accounts.Taken(ctx, role, "username", strings.TrimSpace(*in.Username), self)
		if err != nil {
			return err
		}
		if taken {
			return conflict("A user with this username already exists")
		}
	}
	return nil
}

// PictureURL resolves the stored profile picture to a public URL.
func (s *UserService) PictureURL(p models.Principal) string {
	return s.storage.URL(p.Credentials().ProfilePicture)
}
