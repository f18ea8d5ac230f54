package notice

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Draft is the input for creating a notice.
type Draft struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required,max=4000"`
	Priority  string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Active    *bool      `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Normalize trims text fields, applies defaults and validates.
func (d *Draft) Normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.Priority = strings.ToLower(strings.TrimSpace(d.Priority))
	if d.Priority == "" {
		d.Priority = PriorityLow
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return nil
}

// IsActive defaults to true when unset.
func (d Draft) IsActive() bool {
	return d.Active == nil || *d.Active
}

// Patch is a partial update. Nil fields are left unchanged. ClearExpiry
// removes an expiry.
type Patch struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Content     *string    `json:"content" validate:"omitempty,min=1,max=4000"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Active      *bool      `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

func (p *Patch) Normalize() error {
	if p.Title != nil {
		s := strings.TrimSpace(*p.Title)
		p.Title = &s
	}
	if p.Content != nil {
		s := strings.TrimSpace(*p.Content)
		p.Content = &s
	}
	if p.Priority != nil {
		s := strings.ToLower(strings.TrimSpace(*p.Priority))
		p.Priority = &s
	}
	if p.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return nil
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Priority == nil &&
		p.Active == nil && p.ExpiresAt == nil && !p.ClearExpiry
}

// Apply returns n with the patch applied.
func (p Patch) Apply(n Notice) Notice {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Priority != nil {
		n.Priority = *p.Priority
	}
	if p.Active != nil {
		n.Active = *p.Active
	}
	if p.ClearExpiry {
		n.ExpiresAt = nil
	} else if p.ExpiresAt != nil {
		t := p.ExpiresAt.UTC()
		n.ExpiresAt = &t
	}
	return n
}

// describe turns validator errors into a short client-safe message.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	var parts []string
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "min":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, field+" is too long")
		case "oneof":
			parts = append(parts, field+" must be one of "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
