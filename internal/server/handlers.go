package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/desertthunder/topsync/internal/tasks"
)

// Plain text callback responses. All but the playlist failure are sent with status 200.
const (
	msgAuthFailed      = "Authorization failed."
	msgActionRequired  = "Parameter Action Required."
	msgTokenExchange   = "Failed to fetch access token."
	msgPlaylistFailed  = "Failed to create playlist."
	msgExportSucceeded = "Data successfully exported"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

// writeError maps validation failures to 400 and everything else to 502.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Msg})
		return
	}

	logger.Error("upstream failure", "error", err)
	writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
}

// HealthHandler reports the application name at the root path.
type HealthHandler struct {
	name string
}

func NewHealthHandler(name string) *HealthHandler {
	return &HealthHandler{name: name}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /{$}"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"application": h.name})
}

// AuthURLBuilder builds authorize URLs. Implemented by [services.Authenticator].
type AuthURLBuilder interface {
	AuthURL(clientID, scopes, state string) string
}

// LoginHandler redirects to the authorize page. The requested action travels as the OAuth state.
type LoginHandler struct {
	auth AuthURLBuilder
}

func NewLoginHandler(auth AuthURLBuilder) *LoginHandler {
	return &LoginHandler{auth: auth}
}

func (h *LoginHandler) Routes() []string {
	return []string{"GET /login"}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	action := cmp.Or(q.Get("action"), tasks.DefaultAction())

	http.Redirect(w, r, h.auth.AuthURL(q.Get("client_id"), q.Get("scopes"), action), http.StatusFound)
}

// CallbackRunner completes the authorization flow. Implemented by [tasks.Orchestrator].
type CallbackRunner interface {
	HandleCallback(ctx context.Context, code, action string) (*tasks.CallbackResult, error)
}

// CallbackHandler serves the OAuth redirect target.
type CallbackHandler struct {
	orchestrator CallbackRunner
	logger       *log.Logger
}

func NewCallbackHandler(orchestrator CallbackRunner, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{orchestrator: orchestrator, logger: logger}
}

func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.orchestrator.HandleCallback(r.Context(), q.Get("code"), q.Get("state"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, struct {
			Message string `json:"message"`
			*tasks.CallbackResult
		}{Message: msgExportSucceeded, CallbackResult: result})
	case errors.Is(err, shared.ErrAuthFailed):
		writeText(w, http.StatusOK, msgAuthFailed)
	case errors.Is(err, shared.ErrActionMissing):
		writeText(w, http.StatusOK, msgActionRequired)
	case errors.Is(err, shared.ErrPlaylistCreate):
		h.logger.Error("callback action failed", "action", q.Get("state"), "error", err)
		writeText(w, http.StatusInternalServerError, msgPlaylistFailed)
	default:
		h.logger.Error("token exchange failed", "error", err)
		writeText(w, http.StatusOK, msgTokenExchange)
	}
}

// TopHandler serves normalized top items.
type TopHandler struct {
	collector tasks.TopCollector
	logger    *log.Logger
}

func NewTopHandler(collector tasks.TopCollector, logger *log.Logger) *TopHandler {
	return &TopHandler{collector: collector, logger: logger}
}

func (h *TopHandler) Routes() []string {
	return []string{"GET /top"}
}

func (h *TopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("access_token")
	kind := cmp.Or(q.Get("type"), string(services.KindTracks))
	timeRange := cmp.Or(q.Get("time_range"), string(services.ShortTerm))

	limit := services.MaxTopLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			// Earlier parameters take precedence over a malformed limit.
			if _, _, verr := services.ValidateTopQuery(kind, timeRange, limit, token); verr != nil {
				writeError(w, h.logger, verr)
				return
			}
			writeError(w, h.logger, shared.InvalidParam("limit", "Expected an integer."))
			return
		}
		limit = n
	}

	items, err := h.collector.CollectTop(r.Context(), kind, timeRange, limit, token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Upserter replaces playlists by name. Implemented by [tasks.PlaylistEngine].
type Upserter interface {
	Upsert(ctx context.Context, req tasks.UpsertRequest, progress chan<- tasks.ProgressUpdate) (*tasks.UpsertResult, error)
}

// CreatePlaylistHandler replaces a playlist with the tracks in the request body.
type CreatePlaylistHandler struct {
	engine Upserter
	logger *log.Logger
}

func NewCreatePlaylistHandler(engine Upserter, logger *log.Logger) *CreatePlaylistHandler {
	return &CreatePlaylistHandler{engine: engine, logger: logger}
}

func (h *CreatePlaylistHandler) Routes() []string {
	return []string{"POST /createplaylist"}
}

type createPlaylistBody struct {
	Tracks []string `json:"tracks"`
}

func (h *CreatePlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := tasks.UpsertRequest{
		AccessToken:  q.Get("access_token"),
		PlaylistName: q.Get("playlist_name"),
		UserID:       q.Get("user_id"),
		Description:  q.Get("description"),
	}

	if err := req.Validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if raw := q.Get("public"); raw != "" {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, h.logger, shared.InvalidParam("public", "Expected 'true' or 'false'."))
			return
		}
		req.Public = public
	}

	tracks, err := decodeTracks(r.Body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.TrackURIs = tracks

	result, err := h.engine.Upsert(r.Context(), req, nil)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeTracks reads the optional {"tracks": [...]} body. A missing or empty body means no tracks.
func decodeTracks(body io.Reader) ([]string, error) {
	if body == nil {
		return []string{}, nil
	}

	var payload createPlaylistBody
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return []string{}, nil
		}
		return nil, shared.InvalidParam("tracks", "Expected a JSON body of the form {\"tracks\": [...]}.")
	}

	if payload.Tracks == nil {
		return []string{}, nil
	}
	return payload.Tracks, nil
}
