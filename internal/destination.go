package internal

import (
	"context"
	"errors"
	"regexp"
	"time"
)

var (
	ErrNotFound             = errors.New("profile not found")
	ErrAlreadyExists        = errors.New("profile already exists")
	ErrInvalidName          = errors.New("invalid profile name")
	ErrEmptyCatalog         = errors.New("catalog has no destinations")
	ErrDuplicateDestination = errors.New("duplicate destination name")
)

// Field names a categorical attribute of a destination.
type Field string

const (
	FieldType   Field = "type"
	FieldSeason Field = "season"
	FieldBudget Field = "budget"

	FieldFamilyFriendly Field = "family_friendly"
	FieldGirlsFriendly  Field = "girls_friendly"
)

// CategoricalFields lists the one-hot encoded fields in feature-space order.
var CategoricalFields = []Field{FieldType, FieldSeason, FieldBudget}

type Destination struct {
	Name           string `yaml:"name" json:"name" validate:"required"`
	Type           string `yaml:"type" json:"type" validate:"required"`
	Season         string `yaml:"season" json:"season" validate:"required"`
	Budget         string `yaml:"budget" json:"budget" validate:"required"`
	FamilyFriendly bool   `yaml:"family_friendly" json:"family_friendly"`
	GirlsFriendly  bool   `yaml:"girls_friendly" json:"girls_friendly"`
}

// Category returns the destination's value for a categorical field.
func (d Destination) Category(f Field) string {
	return Preference{Type: d.Type, Season: d.Season, Budget: d.Budget}.Category(f)
}

// Preference returns the attributes of d as a preference record.
func (d Destination) Preference() Preference {
	return Preference{
		Type:           d.Type,
		Season:         d.Season,
		Budget:         d.Budget,
		FamilyFriendly: d.FamilyFriendly,
		GirlsFriendly:  d.GirlsFriendly,
	}
}

// Preference is what a traveller asks for: a destination without a name.
type Preference struct {
	Type           string `yaml:"type" json:"type" validate:"required"`
	Season         string `yaml:"season" json:"season" validate:"required"`
	Budget         string `yaml:"budget" json:"budget" validate:"required"`
	FamilyFriendly bool   `yaml:"family_friendly" json:"family_friendly"`
	GirlsFriendly  bool   `yaml:"girls_friendly" json:"girls_friendly"`
}

func (p Preference) Category(f Field) string {
	switch f {
	case FieldType:
		return p.Type
	case FieldSeason:
		return p.Season
	case FieldBudget:
		return p.Budget
	default:
		return ""
	}
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ProfileName identifies a saved preference profile.
type ProfileName string

func NewProfileName(s string) (ProfileName, error) {
	if s == "" {
		return "", ErrInvalidName
	}
	if !namePattern.MatchString(s) {
		return "", ErrInvalidName
	}
	return ProfileName(s), nil
}

func (n ProfileName) String() string {
	return string(n)
}

type Profile struct {
	Name       ProfileName
	Preference Preference
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProfile(name ProfileName, pref Preference) *Profile {
	now := time.Now().UTC()
	return &Profile{
		Name:       name,
		Preference: pref,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type ProfileRepository interface {
	Get(ctx context.Context, name ProfileName) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, name ProfileName) error
	List(ctx context.Context, prefix string) ([]*Profile, error)
	Exists(ctx context.Context, name ProfileName) (bool, error)
}
