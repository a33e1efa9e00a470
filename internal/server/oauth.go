package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult contains the result of a local OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives a single OAuth2 callback for the CLI and hands the token back on a channel.
//
// Unlike [CallbackHandler] it verifies the state against the value it generated and dispatches no actions.
type OAuthHandler struct {
	exchanger   services.TokenExchanger
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler with the given exchanger and state token.
// The state token should be random for CSRF protection; see [shared.GenerateID].
func NewOAuthHandler(exchanger services.TokenExchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates state parameter, exchanges authorization code for tokens, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if state := r.URL.Query().Get("state"); state != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		h.Send(OAuthResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)})
		writeText(w, http.StatusBadRequest, msgAuthFailed)
		return
	}

	token, err := h.exchanger.Exchange(context.WithoutCancel(r.Context()), code)
	if err != nil {
		h.Send(OAuthResult{err: err})
		writeText(w, http.StatusInternalServerError, msgTokenExchange)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>topsync</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4rem;">
    <h1 style="color: #1DB954;">Authorization Successful</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
