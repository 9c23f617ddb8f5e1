package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"covcheck/internal/connection"
	"covcheck/internal/coverity"
	"covcheck/internal/logging"
)

var (
	ErrNoURL      = errors.New("no url provided")
	ErrNoInstance = errors.New("no instance provided")
)

// FieldValidator validates instance selections.
// [connection.FieldHelper] implements it.
type FieldValidator interface {
	InstanceItems() []connection.Option
	CheckInstanceURL(ctx context.Context, instanceURL string) connection.Outcome
	CheckInstanceURLIgnoreMessage(ctx context.Context, instanceURL string) connection.Outcome
	TestConnectionTo(ctx context.Context, address string, creds *coverity.Credentials) connection.Outcome
}

// ViewLister lists the views of an instance. [views.Retriever] implements it.
type ViewLister interface {
	Views(ctx context.Context, inst coverity.Instance, refresh bool) []string
}

// InstancesHandler returns an HTTP handler that lists the instance options.
func InstancesHandler(fv FieldValidator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := fv.InstanceItems()
		logger.Debug("listed instances", zap.Int(logging.KeyCount, len(items)))
		writeJSON(w, logger, items)
	}
}

// CheckInstanceHandler returns an HTTP handler that validates the instance
// named by the url query parameter. With ignore_message=true the outcome is
// collapsed to pass/fail.
func CheckInstanceHandler(fv FieldValidator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ignore := false
		if raw := q.Get("ignore_message"); raw != "" {
			var err error
			if ignore, err = strconv.ParseBool(raw); err != nil {
				JSONError(w, fmt.Errorf("invalid ignore_message: %w", err), http.StatusBadRequest)
				return
			}
		}

		var out connection.Outcome
		if ignore {
			out = fv.CheckInstanceURLIgnoreMessage(r.Context(), q.Get("url"))
		} else {
			out = fv.CheckInstanceURL(r.Context(), q.Get("url"))
		}
		writeJSON(w, logger, out)
	}
}

type testConnectionRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TestConnectionHandler returns an HTTP handler that tests an arbitrary
// address and credentials posted as JSON.
func TestConnectionHandler(fv FieldValidator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := new(testConnectionRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			logger.Info("decoding body", zap.Error(err))
			JSONError(w, err, http.StatusBadRequest)
			return
		}
		if req.URL == "" {
			JSONError(w, ErrNoURL, http.StatusBadRequest)
			return
		}

		var creds *coverity.Credentials
		if req.Username != "" || req.Password != "" {
			creds = &coverity.Credentials{Username: req.Username, Password: req.Password}
		}
		writeJSON(w, logger, fv.TestConnectionTo(r.Context(), req.URL, creds))
	}
}

// ViewsHandler returns an HTTP handler that lists the views of a configured
// instance. Listing is best effort: an unreachable server yields an empty
// list, not an error.
func ViewsHandler(instances coverity.Instances, lister ViewLister, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		name := q.Get("instance")
		if name == "" {
			JSONError(w, ErrNoInstance, http.StatusBadRequest)
			return
		}
		inst, ok := instances.Find(name)
		if !ok {
			JSONError(w, fmt.Errorf("unknown instance %q", name), http.StatusNotFound)
			return
		}
		refresh, _ := strconv.ParseBool(q.Get("refresh"))

		names := lister.Views(r.Context(), inst, refresh)
		logger.Debug("listed views", zap.String(logging.KeyInstanceURL, inst.URL), zap.Int(logging.KeyCount, len(names)))
		writeJSON(w, logger, &struct {
			Views []string `json:"views"`
		}{Views: names})
	}
}
