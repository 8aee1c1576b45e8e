package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie carries a one-shot notice across a redirect. It is set on
// the redirect response and cleared as soon as the next page reads it.
const flashCookie = "sheetdrop_flash"

// Flash is a notice rendered once on the next page load.
type Flash struct {
	Category string `json:"category"` // success, error, info, warning
	Message  string `json:"message"`
}

// setFlash stores a notice for the page the client is being redirected to.
func setFlash(w http.ResponseWriter, category, message string) {
	b, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending notice, if any. A malformed
// cookie is discarded silently.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	return &f
}
