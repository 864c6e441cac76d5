package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"taskdo-service/models"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// logRequest is the logging entry point shared by every handler in this
// package. Entries are tagged with the matched route and, on bearer routes,
// the authenticated user.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	allFields := append(requestFields(ctx), fields...)

	switch level {
	case "error":
		logger.Error(message, allFields...)
	case "debug":
		logger.Debug(message, allFields...)
	default:
		logger.Info(message, allFields...)
	}
}

func requestFields(ctx context.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("route", httpserver.GetRouteName(ctx)),
		zap.String("method", httpserver.GetRouteMethod(ctx)),
		zap.String("path", httpserver.GetRoutePath(ctx)),
	}
	if user, ok := currentUser(ctx); ok {
		fields = append(fields, zap.Int("user_id", user.ID), zap.String("username", user.Username))
	}
	return fields
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError uses the AppError code as the HTTP status
func writeError(w http.ResponseWriter, appErr *errs.AppError) {
	writeJSON(w, appErr.Code, appErr)
}

func newBadRequestError(message string) *errs.AppError {
	return &errs.AppError{Code: http.StatusBadRequest, Message: message}
}

// currentUser returns the account resolved by the bearer auth callback
func currentUser(ctx context.Context) (models.User, bool) {
	auth := httpserver.GetRequestAuth(ctx)
	if auth == nil {
		return models.User{}, false
	}
	user, ok := auth.Claims.(models.User)
	return user, ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes limits the encoded length, e.g. bcrypt's 72-byte input
	if err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	}); err != nil {
		panic(err)
	}
	return v
}

// decodeBody strictly decodes a JSON body into dst and validates it.
// Unknown fields are rejected so only the request struct's fields can be set.
func decodeBody(r *http.Request, dst interface{}) *errs.AppError {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidationError("Request body is required")
		}
		return errs.NewValidationError("Invalid JSON: " + err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return errs.NewValidationError(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "maxbytes":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int64, *errs.AppError) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValidationError("Invalid todo ID")
	}
	return id, nil
}
