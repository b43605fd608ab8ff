package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatModule Format = "module"
)

const DefaultMessage = "Update data via Academy Admin"

// DefaultPath is the file a format is published to when none is configured.
func DefaultPath(f Format) string {
	if f == FormatModule {
		return "data/mockData.ts"
	}
	return "data/catalog.json"
}

// Settings is the publish target. Token, Repo and Path are opaque: only
// their presence is checked.
type Settings struct {
	Token   string `validate:"required"`
	Repo    string `validate:"required"`
	Path    string `validate:"required"`
	Branch  string
	Message string
	Format  Format `validate:"omitempty,oneof=json module"`
}

var validate = validator.New()

// Validate trims the settings and reports every missing field at once.
func (s Settings) Validate() (Settings, error) {
	s.Token = strings.TrimSpace(s.Token)
	s.Repo = strings.TrimSpace(s.Repo)
	s.Path = strings.TrimSpace(s.Path)
	s.Branch = strings.TrimSpace(s.Branch)
	if s.Format == "" {
		s.Format = FormatJSON
	}
	if strings.TrimSpace(s.Message) == "" {
		s.Message = DefaultMessage
	}

	if err := validate.Struct(s); err != nil {
		return s, newError(KindConfig, formatValidationError(err), nil)
	}
	return s, nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
