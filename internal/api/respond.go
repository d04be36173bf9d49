package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps store errors to status codes. Input is validated
// before reaching the store, so InvalidState here is a lifecycle conflict.
func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case reservation.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case reservation.IsInvalidState(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("unexpected store error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (s *HTTPServer) decode(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return s.check(dst)
}

func (s *HTTPServer) check(dst any) error {
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

// parseWindow parses RFC 3339 check_in/check_out and requires check_out > check_in.
func parseWindow(checkIn, checkOut string) (in, out time.Time, err error) {
	if checkIn == "" || checkOut == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("check_in and check_out are required")
	}
	in, err = time.Parse(time.RFC3339, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_in; expected RFC 3339, e.g. 2024-01-01T14:00:00Z")
	}
	out, err = time.Parse(time.RFC3339, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_out; expected RFC 3339, e.g. 2024-01-03T11:00:00Z")
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, fmt.Errorf("check_out must be after check_in")
	}
	return in, out, nil
}
