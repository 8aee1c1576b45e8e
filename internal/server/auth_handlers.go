package server

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"sheetdrop/internal/errs"
)

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register.html", pageData{Flash: popFlash(w, r)})
}

// handleRegister processes the registration form. Validation and
// conflict errors re-render the form with the specific notice; success
// redirects to the login form.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	u, err := s.auth.Register(r.Context(), username, email, password)
	if err != nil {
		msg, status := registerNotice(err, username, email)
		if status == http.StatusInternalServerError {
			s.logger.Error("register",
				zap.String("rid", RequestIDFromContext(r.Context())), zap.Error(err))
		}
		s.render(w, status, "register.html", pageData{Flash: &Flash{Category: "error", Message: msg}})
		return
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	setFlash(w, "success", "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// registerNotice maps a registration failure to the user-facing message
// and HTTP status. Internal failures get a generic notice, never details.
func registerNotice(err error, username, email string) (string, int) {
	switch {
	case errors.Is(err, errs.ErrMissingUsername):
		return "Username is required.", http.StatusBadRequest
	case errors.Is(err, errs.ErrMissingEmail):
		return "Email is required.", http.StatusBadRequest
	case errors.Is(err, errs.ErrMissingPassword):
		return "Password is required.", http.StatusBadRequest
	case errors.Is(err, errs.ErrDuplicateUsername):
		return fmt.Sprintf("User %s is already registered.", username), http.StatusConflict
	case errors.Is(err, errs.ErrDuplicateEmail):
		return fmt.Sprintf("Email %s is already registered.", email), http.StatusConflict
	default:
		return "An unknown error occurred.", http.StatusInternalServerError
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.html", pageData{Flash: popFlash(w, r)})
}

// handleLogin authenticates the form credentials. Success issues a
// fresh session token, replacing any prior one, and redirects to the
// upload page.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	u, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		msg, status := loginNotice(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("login",
				zap.String("rid", RequestIDFromContext(r.Context())), zap.Error(err))
		}
		s.render(w, status, "login.html", pageData{Flash: &Flash{Category: "error", Message: msg}})
		return
	}

	token, exp, err := s.sessions.Issue(u.ID, u.Username)
	if err != nil {
		s.logger.Error("issue session",
			zap.String("rid", RequestIDFromContext(r.Context())), zap.Error(err))
		s.render(w, http.StatusInternalServerError, "login.html",
			pageData{Flash: &Flash{Category: "error", Message: "An unknown error occurred."}})
		return
	}
	s.sessions.SetCookie(w, token, exp)

	setFlash(w, "success", "Login successful!")
	http.Redirect(w, r, "/upload", http.StatusFound)
}

func loginNotice(err error) (string, int) {
	switch {
	case errors.Is(err, errs.ErrUnknownUser):
		return "Incorrect username.", http.StatusUnauthorized
	case errors.Is(err, errs.ErrBadPassword):
		return "Incorrect password.", http.StatusUnauthorized
	default:
		return "An unknown error occurred.", http.StatusInternalServerError
	}
}

// handleLogout clears the session unconditionally; logging out while
// anonymous is a no-op, not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	setFlash(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
