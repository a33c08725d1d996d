package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"eventshuffle/internal/domain"
	"eventshuffle/internal/middleware"
	apperrors "eventshuffle/pkg/errors"
	"eventshuffle/pkg/logger"
)

const maxBodyBytes = 1 << 20

// newValidator reports field errors under their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and applies its validate tags
func decodeAndValidate(v *validator.Validate, w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make(map[string]interface{}, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[fieldPath(fe)] = fe.Tag()
			}
			return apperrors.NewValidationError("Invalid request", details)
		}
		return apperrors.NewValidationError("Invalid request", nil)
	}

	return nil
}

// fieldPath strips the struct name from a namespace like CreateEventRequest.dates[0]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// toAppError maps service errors onto the HTTP error taxonomy
func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	var voteErr *domain.InvalidVoteDateError
	if errors.As(err, &voteErr) {
		return apperrors.NewValidationError("Invalid vote date", map[string]interface{}{
			"date": voteErr.Date,
		})
	}

	var dateErr *domain.InvalidDateError
	if errors.As(err, &dateErr) {
		return apperrors.NewValidationError("Invalid date", map[string]interface{}{
			"date": dateErr.Date,
		})
	}

	switch {
	case errors.Is(err, domain.ErrEmptyName):
		return apperrors.NewValidationError("Name is required", nil)
	case errors.Is(err, domain.ErrNoDates):
		return apperrors.NewValidationError("At least one date is required", nil)
	case errors.Is(err, domain.ErrInvalidRecurrence):
		return apperrors.NewValidationError("Invalid recurrence rule", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	return apperrors.NewInternalError("Internal server error", err)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := toAppError(err)
	requestID := middleware.GetRequestID(r.Context())

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	respondJSON(w, appErr.StatusCode, apperrors.NewErrorResponse(appErr, requestID))
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

// respondCacheable writes data with an ETag, answering 304 when the client copy is current
func respondCacheable(w http.ResponseWriter, r *http.Request, data interface{}) {
	etag := generateETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	respondJSON(w, http.StatusOK, data)
}
