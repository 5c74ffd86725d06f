package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/service"
	"github.com/carte-app/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode JSON response")
	}
}

// decodeBody decodes the JSON request body into v and validates it. On
// failure it writes the 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// idParam parses a positive integer URL parameter. On failure it writes
// the 400 response and returns false.
func idParam(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors to HTTP responses. Unknown errors
// are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var stockErr *service.InsufficientStockError
	var transitionErr *service.InvalidTransitionError

	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     stockErr.Error(),
			"itemId":    stockErr.ItemID,
			"itemName":  stockErr.ItemName,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":         transitionErr.Error(),
			"currentStatus": transitionErr.From,
		})
	case errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrItemInUse), errors.Is(err, service.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPassword):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	default:
		logrus.WithError(err).WithField("path", r.URL.Path).Errorf("%s failed", op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// Publisher injects server-originated events into the relay.
// Satisfied by *ws.Hub.
type Publisher interface {
	Publish(channel string, msg event.Message) error
}

// publish sends msgs to the menu's channel and to the global channel. A
// nil Publisher disables server events.
func publish(p Publisher, menuID int64, msgs ...event.Message) {
	if p == nil {
		return
	}
	for _, msg := range msgs {
		for _, channel := range []string{ws.MenuChannel(menuID), ws.GlobalChannel} {
			if err := p.Publish(channel, msg); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"menu_id": menuID,
					"channel": channel,
					"type":    msg.Type(),
				}).Error("publish event")
			}
		}
	}
}
