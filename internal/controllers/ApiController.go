package controllers

import (
	"errors"
	"net/http"
	"reactledger/internal/ledger"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"reactledger/internal/services"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var renderers = map[string]func(string, map[string]int) string{
	services.QueryCredit:  ledger.RenderCredit,
	services.QueryDebit:   ledger.RenderDebit,
	services.QueryBalance: ledger.RenderBalance,
}

type ApiController struct {
	logger  providers.Logger
	service services.ReactionServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ReactionServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type queryResponse struct {
	User   string         `json:"user"`
	Kind   string         `json:"kind"`
	Totals map[string]int `json:"totals"`
}

type rebuildStatus struct {
	Scope      string                `json:"scope"`
	InProgress bool                  `json:"in_progress"`
	Last       *models.RebuildReport `json:"last,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	gson, _ := json.Marshal(map[string]string{"error": msg})
	writeJSON(w, status, gson)
}

// serveFromCacheOrCompute keys include the snapshot version, so a new
// snapshot never serves stale totals.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey, contentType string, compute func() ([]byte, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	data, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeQuery, "Query %s failed: %s", cacheKey, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ac.cache.Set(cacheKey, data)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// queryCacheKey quotes the caller-supplied fields so that no user or name
// can spell out another request's key.
func queryCacheKey(kind, version, format string, fields ...string) string {
	var b strings.Builder
	b.WriteString(kind + ":" + version + ":" + format)
	for _, f := range fields {
		b.WriteByte(':')
		b.WriteString(strconv.Quote(f))
	}
	return b.String()
}

func (ac *ApiController) query(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("u")
		if user == "" {
			writeError(w, http.StatusBadRequest, "missing user id (u)")
			return
		}
		if user == models.UnknownAuthor {
			writeError(w, http.StatusBadRequest, "invalid user id (u)")
			return
		}

		version := ac.service.SnapshotVersion()
		if r.URL.Query().Get("format") == "text" {
			name := r.URL.Query().Get("name")
			if name == "" {
				name = user
			}
			key := queryCacheKey(kind, version, "text", user, name)
			ac.serveFromCacheOrCompute(w, key, "text/plain; charset=utf-8", func() ([]byte, error) {
				totals, err := ac.service.Query(kind, user)
				if err != nil {
					return nil, err
				}
				return []byte(renderers[kind](name, totals)), nil
			})
			return
		}

		key := queryCacheKey(kind, version, "json", user)
		ac.serveFromCacheOrCompute(w, key, "application/json", func() ([]byte, error) {
			totals, err := ac.service.Query(kind, user)
			if err != nil {
				return nil, err
			}
			return json.Marshal(queryResponse{User: user, Kind: kind, Totals: totals})
		})
	}
}

func (ac *ApiController) GetCredit(w http.ResponseWriter, r *http.Request) {
	ac.query(services.QueryCredit)(w, r)
}

func (ac *ApiController) GetDebit(w http.ResponseWriter, r *http.Request) {
	ac.query(services.QueryDebit)(w, r)
}

func (ac *ApiController) GetBalance(w http.ResponseWriter, r *http.Request) {
	ac.query(services.QueryBalance)(w, r)
}

// StartRebuild answers 202 once a rebuild is running in the background.
func (ac *ApiController) StartRebuild(w http.ResponseWriter, r *http.Request) {
	err := ac.service.StartRebuild()
	switch {
	case errors.Is(err, models.ErrNoScope):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrRebuildInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		ac.logger.Errorf(providers.TypePost, "Unable to start rebuild: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ac.logger.Infof(providers.TypePost, "Rebuild of %s requested by %s", ac.service.Scope(), r.RemoteAddr)
	gson, _ := json.Marshal(rebuildStatus{Scope: ac.service.Scope(), InProgress: true})
	writeJSON(w, http.StatusAccepted, gson)
}

func (ac *ApiController) RebuildStatus(w http.ResponseWriter, r *http.Request) {
	gson, err := json.Marshal(rebuildStatus{
		Scope:      ac.service.Scope(),
		InProgress: ac.service.Rebuilding(),
		Last:       ac.service.LastReport(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, gson)
}
