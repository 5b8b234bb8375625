package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/MediSynth-io/postsvc/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthenticateHandler reports whether the request carries a valid session
// cookie. It never fails.
func (api *Api) AuthenticateHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Authentication request has arrived")

	authenticated := api.auth.CheckSession(api.sessionToken(r))
	log.Printf("[AUTH] Authenticated: %v", authenticated)
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}

func (api *Api) SignupHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Signup request has arrived")

	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := api.auth.Register(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrValidation) || errors.Is(err, auth.ErrConflict) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.writeStoreError(w, http.StatusBadRequest, err)
		return
	}

	if api.Config.Auth.LoginOnSignup {
		session, err := api.auth.IssueSession(userID)
		if err != nil {
			api.writeStoreError(w, http.StatusInternalServerError, err)
			return
		}
		api.setSessionCookie(w, session.Token)
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": userID})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login request has arrived")

	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := api.auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		var authErr *auth.AuthenticationError
		if errors.As(err, &authErr) {
			writeError(w, http.StatusUnauthorized, authErr.Reason)
			return
		}
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}

	api.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": session.UserID})
}

// LogoutHandler clears the session cookie. The token itself stays valid
// until it expires.
func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Logout request has arrived")

	http.SetCookie(w, &http.Cookie{
		Name:     api.Config.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   api.Config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"Msg": "cookie cleared"})
}

func (api *Api) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     api.Config.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(api.auth.Tokens().TTL().Seconds()),
		HttpOnly: true,
		Secure:   api.Config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (api *Api) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(api.Config.Auth.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
