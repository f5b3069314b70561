package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/dto"
	"passkey-auth/internal/netutil"
	"passkey-auth/internal/service"
	"passkey-auth/internal/service/impl"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	auth     service.AuthService
	sessions service.SessionService

	secureCookies bool
}

func NewHandler(auth service.AuthService, sessions service.SessionService, secureCookies bool) *Handler {
	return &Handler{auth: auth, sessions: sessions, secureCookies: secureCookies}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF can be a list: client, proxy1, proxy2...
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		if normalized, ok := netutil.NormalizeIP(xr); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

// ====== Registration ======

func (h *Handler) registerOptions(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	res, err := h.auth.IssueRegistrationOptions(r.Context(), req.Token)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) registerVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	res, err := h.auth.VerifyRegistration(r.Context(), req.ChallengeID, req.Response, req.InvitationID)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	slog.Info("registration verified",
		"user_id", res.User.ID,
		"ip", clientIP(r),
		"ua", netutil.TruncateUserAgent(r.UserAgent()),
	)

	h.setSessionCookie(w, res.Session)
	writeJSON(w, http.StatusOK, res)
}

// ====== Login ======

func (h *Handler) loginOptions(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.IssueAuthenticationOptions(r.Context())
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) loginVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	res, err := h.auth.VerifyAuthentication(r.Context(), req.ChallengeID, req.Response)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	slog.Info("login verified",
		"user_id", res.User.ID,
		"ip", clientIP(r),
		"ua", netutil.TruncateUserAgent(r.UserAgent()),
	)

	h.setSessionCookie(w, res.Session)
	writeJSON(w, http.StatusOK, res)
}

// ====== Session ======

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			h.writeAuthError(w, r, err)
			return
		}
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, dto.UserInfoFrom(user))
}

// ====== Invitations (admin) ======

func (h *Handler) createInvitation(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	invitedBy := ""
	if user := CurrentUser(r.Context()); user != nil {
		invitedBy = user.ID
	}

	res, err := h.auth.CreateInvitation(r.Context(), req.Email, invitedBy, req.Role, req.ExpiryDays)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listInvitations(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.ListInvitations(r.Context())
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteInvitation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ====== Cookies ======

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess dto.SessionIssued) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.SessionID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// ====== Responses ======

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAuthError maps service errors to statuses. Domain rejections carry
// their message; anything unexpected is logged and masked.
func (h *Handler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrVerificationFailed),
		errors.Is(err, domain.ErrCounterRegression),
		errors.Is(err, domain.ErrUnknownCredential):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAlreadyInvited):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidOrExpiredInvitation),
		errors.Is(err, domain.ErrInvalidOrExpiredRequest),
		errors.Is(err, domain.ErrInvalidInvitation),
		errors.Is(err, domain.ErrEmailMismatch),
		errors.Is(err, domain.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, impl.ErrEmptyEmail),
		errors.Is(err, impl.ErrEmptyToken),
		errors.Is(err, impl.ErrEmptyResponse),
		errors.Is(err, impl.ErrEmptyID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
