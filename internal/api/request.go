package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sqlchat/sqlchat/internal/nl2sql"
)

const maxRequestBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strategy", validateStrategy)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	return v
}

func validateStrategy(fl validator.FieldLevel) bool {
	_, err := nl2sql.ParseStrategy(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

type submitMessageRequest struct {
	Text     string `json:"text" validate:"notblank"`
	Strategy string `json:"strategy" validate:"omitempty,strategy"`
}

type setStrategyRequest struct {
	Strategy string `json:"strategy" validate:"required,strategy"`
}

type translateRequest struct {
	Prompt   string `json:"prompt" validate:"notblank"`
	Strategy string `json:"strategy" validate:"omitempty,strategy"`
}

type queryRequest struct {
	SQL string `json:"sql" validate:"notblank"`
}

// requestError carries the API error code for a rejected request body.
type requestError struct {
	code    string
	message string
	context map[string]any
}

func (e *requestError) Error() string {
	return e.message
}

// decodeRequest reads a strict JSON body into dst and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &requestError{code: "INVALID_JSON", message: "invalid request body", context: map[string]any{"details": err.Error()}}
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			return &requestError{
				code:    "INVALID_REQUEST",
				message: validationMessage(first),
				context: map[string]any{"field": first.Field(), "rule": first.Tag()},
			}
		}
		return &requestError{code: "INVALID_REQUEST", message: err.Error()}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "strategy":
		return fmt.Sprintf("unknown strategy %q", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(r.Context(), w, http.StatusBadRequest, reqErr.code, reqErr.message, false, reqErr.context)
		return
	}
	writeError(r.Context(), w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), false, nil)
}

// strategyOrDefault parses an already validated strategy; "" stays "".
func strategyOrDefault(raw string) nl2sql.Strategy {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	strategy, err := nl2sql.ParseStrategy(raw)
	if err != nil {
		return ""
	}
	return strategy
}
