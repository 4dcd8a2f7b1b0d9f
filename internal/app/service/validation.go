package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/go-playground/validator/v10"
)

// RunCodeRequest runs code once against custom stdin without judging it.
type RunCodeRequest struct {
	Code              string                  `json:"code" validate:"required"`
	Language          model.Language          `json:"language" validate:"required,language"`
	Stdin             string                  `json:"stdin"`
	ExecutionProvider model.ExecutionProvider `json:"executionProvider,omitempty" validate:"omitempty,provider"`
}

// NewValidator returns a validator that knows the language and provider
// enumerations and reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return model.Language(fl.Field().String()).Valid()
	})
	v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return model.ExecutionProvider(fl.Field().String()).Valid()
	})
	return v
}

// validateRequest wraps validation failures in common.ErrBadRequest.
func validateRequest(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "language":
			msgs = append(msgs, fmt.Sprintf("unsupported language %q", fe.Value()))
		case "provider":
			msgs = append(msgs, fmt.Sprintf("unknown execution provider %q", fe.Value()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), common.ErrBadRequest)
}
