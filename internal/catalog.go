package internal

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

const EmbeddedCatalogSource = "embedded"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator. Field names in errors follow
// the yaml (or json) tags so messages match what users write.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"yaml", "json"} {
				name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return ""
		})
	})
	return validate
}

// CatalogValidationError lists every invalid field found in a catalog.
type CatalogValidationError struct {
	Problems []string
}

func (e *CatalogValidationError) Error() string {
	return "invalid catalog: " + strings.Join(e.Problems, "; ")
}

type catalogFile struct {
	Destinations []Destination `yaml:"destinations" validate:"dive"`
}

// DefaultCatalog returns the embedded Northern Pakistan catalog.
func DefaultCatalog() []Destination {
	items, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return items
}

func ParseCatalog(data []byte) ([]Destination, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := ValidateCatalog(file.Destinations); err != nil {
		return nil, err
	}

	return file.Destinations, nil
}

// ValidateCatalog checks that items is non-empty, that every categorical field
// is set and that names are unique.
func ValidateCatalog(items []Destination) error {
	if len(items) == 0 {
		return ErrEmptyCatalog
	}

	if err := validatorInstance().Struct(catalogFile{Destinations: items}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate catalog: %w", err)
		}

		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.Index(ns, "."); i >= 0 {
				ns = ns[i+1:]
			}
			problems = append(problems, fmt.Sprintf("%s is %s", ns, fe.Tag()))
		}
		return &CatalogValidationError{Problems: problems}
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateDestination, item.Name)
		}
		seen[item.Name] = struct{}{}
	}

	return nil
}

func LoadCatalog(path string) ([]Destination, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	items, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func SaveCatalog(path string, items []Destination) error {
	if err := ValidateCatalog(items); err != nil {
		return err
	}

	data, err := yaml.Marshal(catalogFile{Destinations: items})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// CatalogPath returns the catalog file a scope uses, or "" for the embedded one.
// An explicit path in cfg wins; relative paths are resolved against the scope root.
func CatalogPath(scope Scope, cfg *Config) string {
	if cfg != nil && cfg.Catalog.Path != "" {
		if filepath.IsAbs(cfg.Catalog.Path) {
			return cfg.Catalog.Path
		}
		return filepath.Join(scope.Path, cfg.Catalog.Path)
	}

	if _, err := os.Stat(scope.CatalogPath()); err == nil {
		return scope.CatalogPath()
	}
	return ""
}

// ResolveCatalog loads the catalog for scope and reports where it came from.
func ResolveCatalog(scope Scope, cfg *Config) ([]Destination, string, error) {
	path := CatalogPath(scope, cfg)
	if path == "" {
		return DefaultCatalog(), EmbeddedCatalogSource, nil
	}

	items, err := LoadCatalog(path)
	if err != nil {
		return nil, path, err
	}
	return items, path, nil
}
