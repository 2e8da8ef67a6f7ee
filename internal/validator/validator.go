package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/luneclub/lune/backend/internal/models"
)

var registerOnce sync.Once

// Register installs the custom tags on gin's binding validator. Safe to call
// more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		err = RegisterRules(v)
	})
	return err
}

// RegisterRules adds the domain tags to v:
//
//	member_tier     STANDARD, GOLD or VIP
//	cast_tier       STANDARD or HIGH_CLASS
//	meeting_status  PENDING, CONFIRMED, COMPLETED or CANCELLED
//	role            MEMBER, CAST or ADMIN
//
// Empty values pass; pair with required where needed.
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"member_tier":    validateMemberTier,
		"cast_tier":      validateCastTier,
		"meeting_status": validateMeetingStatus,
		"role":           validateRole,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func validateMemberTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.MemberTier(value).Valid()
}

func validateCastTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.CastTier(value).Valid()
}

func validateMeetingStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.MeetingStatus(value).Valid()
}

func validateRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.Role(value).Valid()
}

// Message turns a binding error into a short client-facing sentence. The
// first failing field wins.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "member_tier", "cast_tier", "meeting_status", "role":
		return fmt.Sprintf("%s has an unknown value %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
