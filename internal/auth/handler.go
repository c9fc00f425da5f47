package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User   UserInfo   `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type usersRepo interface {
	GetByUsernameOrEmail(ctx context.Context, login string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
}

type Handler struct {
	repo           usersRepo
	tokenService   *TokenService
	metricsManager *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	tokenService *TokenService,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		tokenService:   tokenService,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the auth endpoints on the given router. The login
// route gets its own, stricter rate limit; profile and logout require a
// valid access token.
func (handler *Handler) SetupRoutes(
	router *mux.Router,
	requireAuth func(next http.Handler) http.Handler,
	loginRateLimit func(next http.Handler) http.Handler,
) {
	router.Handle("/auth/login", loginRateLimit(http.HandlerFunc(handler.handleLogin))).
		Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/auth/refresh", handler.handleRefresh).
		Methods("POST", "OPTIONS").Name("refresh-token")
	router.Handle("/auth/logout", requireAuth(http.HandlerFunc(handler.handleLogout))).
		Methods("POST", "OPTIONS").Name("logout")
	router.Handle("/auth/profile", requireAuth(http.HandlerFunc(handler.handleProfile))).
		Methods("GET", "OPTIONS").Name("profile")
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginReq loginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := handler.repo.GetByUsernameOrEmail(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Errorf("login, get user [%s]: %s", loginReq.Username, err)
			pkg.WriteInternalError(w)
			return
		}
		handler.metricsManager.CounterFailedLogins.Inc()
		pkg.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		handler.metricsManager.CounterFailedLogins.Inc()
		pkg.WriteError(w, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		handler.metricsManager.CounterFailedLogins.Inc()
		pkg.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, err := handler.tokenService.NewTokenPair(user)
	if err != nil {
		log.Errorf("login, new token pair for user %d: %s", user.ID, err)
		pkg.WriteInternalError(w)
		return
	}

	handler.metricsManager.CounterLogins.Inc()
	log.Tracef("user %d [%s] logged in", user.ID, user.Username)

	pkg.WriteDataWithMessage(w, http.StatusOK, loginResponse{
		User:   user.Info(),
		Tokens: tokens,
	}, "Login successful")
}

func (handler *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var refreshReq refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&refreshReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}
	if refreshReq.RefreshToken == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := handler.tokenService.VerifyRefreshToken(refreshReq.RefreshToken)
	if err != nil {
		log.Tracef("refresh token verification failed: %s", err)
		pkg.WriteError(w, http.StatusForbidden, "Invalid refresh token")
		return
	}

	accessToken, err := handler.tokenService.NewAccessToken(claims)
	if err != nil {
		log.Errorf("refresh, new access token for user %d: %s", claims.UserID, err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteDataWithMessage(w, http.StatusOK, TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshReq.RefreshToken,
	}, "Token refreshed successfully")
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// tokens are not blacklisted, clients just drop them
	pkg.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (handler *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		pkg.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := handler.repo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Errorf("get profile for user %d: %s", claims.UserID, err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteData(w, http.StatusOK, user)
}
