package http

import (
	"net/http"

	"github.com/gorilla/sessions"

	"quizmaster/internal/app"
	"quizmaster/internal/logger"
)

const profileCookie = "quizmaster-profile"

// CookieKV adapts one request's cookie session to app.KeyValueStore.
// Set only stages the value; Save writes the cookie.
type CookieKV struct {
	session *sessions.Session
}

func (c CookieKV) Get(key string) (string, bool, error) {
	v, ok := c.session.Values[key].(string)
	return v, ok, nil
}

func (c CookieKV) Set(key, value string) error {
	c.session.Values[key] = value
	return nil
}

// Profiles persists the user name in a signed cookie.
type Profiles struct {
	store sessions.Store
	log   *logger.Logger
}

func NewProfiles(secret string, log *logger.Logger) *Profiles {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Profiles{store: store, log: log}
}

// UserName returns the stored name for the request, or "" if none.
func (p *Profiles) UserName(r *http.Request) string {
	// a tampered or stale cookie yields a fresh, empty session
	session, _ := p.store.Get(r, profileCookie)
	name, _, _ := app.LoadUserName(CookieKV{session: session})
	return name
}

type profileBody struct {
	UserName string `json:"userName"`
}

func (p *Profiles) ServeGet(w http.ResponseWriter, r *http.Request) {
	name := p.UserName(r)
	if name == "" {
		writeError(w, http.StatusNotFound, "no user name stored")
		return
	}
	writeJSON(w, http.StatusOK, profileBody{UserName: name})
}

func (p *Profiles) ServeSave(w http.ResponseWriter, r *http.Request) {
	var body profileBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	session, _ := p.store.Get(r, profileCookie)
	name, err := app.SaveUserName(CookieKV{session: session}, body.UserName)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := session.Save(r, w); err != nil {
		p.log.Error("save profile cookie failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}
	writeJSON(w, http.StatusOK, profileBody{UserName: name})
}
