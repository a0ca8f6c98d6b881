package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel error comparisons
	"math"     // rounding retry-after seconds
	"net/http" // HTTP status codes and primitives
	"strconv"  // string-to-int conversion
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/fadl/dashboard-api/internal/config"     // app configuration
	"github.com/fadl/dashboard-api/internal/limiter"    // attempt budgets for credential endpoints
	"github.com/fadl/dashboard-api/internal/queue"      // audit event shape
	"github.com/fadl/dashboard-api/internal/repository" // user/session stores
	"github.com/fadl/dashboard-api/internal/token"      // token issuing and verification
	"github.com/fadl/dashboard-api/internal/utils"      // password hashing
)

const refreshCookieName = "refreshToken"

// EventPublisher forwards audit events to the broker.  Publishing is
// best-effort: a failure is logged and never fails the auth flow.
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, e queue.AuthEvent) error
}

// AuthHandler bundles dependencies for the auth endpoints.  Everything is
// injected so tests can run against fakes and fresh limiter instances.
type AuthHandler struct {
	Cfg      config.Config
	RL       config.RateLimitConfig
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Tokens   *token.Issuer
	Limiter  limiter.Limiter
	Events   EventPublisher // optional; nil disables audit events
}

func NewAuthHandler(cfg config.Config, rl config.RateLimitConfig, u repository.UserRepository, s repository.SessionRepository, t *token.Issuer, l limiter.Limiter) *AuthHandler {
	return &AuthHandler{Cfg: cfg, RL: rl, Users: u, Sessions: s, Tokens: t, Limiter: l}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPart is the user snapshot returned to clients.  The password hash is
// deliberately absent.
type userPart struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type authResp struct {
	User        userPart `json:"user"`
	AccessToken string   `json:"accessToken"`
}

func toUserPart(u repository.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

// Register: rate limit, validate, uniqueness, hash, create, tokens, session.
// Cheap and fallible checks run before any persistent write so a failure
// leaves no partial side effects behind.
func (h *AuthHandler) Register(c echo.Context) error {
	if blocked := h.throttle(c, "register", h.RL.RegisterMax); blocked != nil {
		return blocked
	}

	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validateRegister(req.Name, req.Email, req.Password); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "details": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "User with this email already exists"})
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		c.Logger().Errorf("register: email lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("register: hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	u, err := h.Users.Create(ctx, req.Name, req.Email, hash)
	if err != nil {
		// lost the race against a concurrent registration of the same email
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User with this email already exists"})
		}
		c.Logger().Errorf("register: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	access, refresh, err := h.issuePair(u.ID)
	if err != nil {
		c.Logger().Errorf("register: issue tokens failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if err := h.Sessions.Upsert(ctx, u.ID, refresh.Token, refresh.ExpiresAt); err != nil {
		c.Logger().Errorf("register: save session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.audit(ctx, queue.EventRegistered, u)
	h.setRefreshCookie(c, refresh.Token, int(h.Cfg.RefreshTTL().Seconds()))
	return c.JSON(http.StatusCreated, authResp{User: toUserPart(u), AccessToken: access.Token})
}

// Login: verify credentials and replace the user's session.  Absent user and
// wrong password answer with the same generic 401 so the response never
// reveals which field was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	if blocked := h.throttle(c, "login", h.RL.LoginMax); blocked != nil {
		return blocked
	}

	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validateLogin(req.Email, req.Password); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "details": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
		}
		c.Logger().Errorf("login: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}

	access, refresh, err := h.issuePair(u.ID)
	if err != nil {
		c.Logger().Errorf("login: issue tokens failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	// replaces any prior session; logging in elsewhere invalidates the old
	// refresh token for session lookup even though its signature still verifies
	if err := h.Sessions.Upsert(ctx, u.ID, refresh.Token, refresh.ExpiresAt); err != nil {
		c.Logger().Errorf("login: save session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.audit(ctx, queue.EventLogin, u)
	h.setRefreshCookie(c, refresh.Token, int(h.Cfg.RefreshTTL().Seconds()))
	return c.JSON(http.StatusOK, authResp{User: toUserPart(u), AccessToken: access.Token})
}

// Refresh: exchange the refresh cookie for a new access token.  The refresh
// token itself is not rotated.  Every failure path is an opaque 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Refresh token not found"})
	}
	raw := cookie.Value

	sub, err := h.Tokens.Verify(raw, token.Refresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid refresh token"})
	}
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// the stored token must equal the presented one; a structurally valid
	// token superseded by a later login fails here
	if _, err := h.Sessions.FindValid(ctx, uid, raw); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired session"})
		}
		c.Logger().Errorf("refresh: session lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired session"})
		}
		c.Logger().Errorf("refresh: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	access, err := h.Tokens.IssueAccess(sub)
	if err != nil {
		c.Logger().Errorf("refresh: issue access failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accessToken": access.Token, "user": toUserPart(u)})
}

// Logout: best-effort session deletion keyed by the bearer access token,
// then always clear the cookie and answer 200.  Logout is idempotent and
// never fails to the caller; store errors are only logged.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if sub, err := h.Tokens.Verify(raw, token.Access); err == nil {
			if uid, err := strconv.ParseUint(sub, 10, 64); err == nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()
				if err := h.Sessions.DeleteByUser(ctx, uid); err != nil {
					c.Logger().Errorf("logout: delete sessions failed: %v", err)
				} else {
					h.audit(ctx, queue.EventLogout, repository.User{ID: uid})
				}
			}
		}
	}

	h.setRefreshCookie(c, "", -1)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me is a representative protected endpoint consuming the identity the JWT
// middleware injected.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		c.Logger().Errorf("me: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// ----- helpers -----

// throttle consumes one attempt for the client address under the given
// action and answers 429 with a Retry-After header when the budget is spent.
func (h *AuthHandler) throttle(c echo.Context, action string, max int) error {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	allowed, retryAfter := h.Limiter.Allow(c.Request().Context(), action+":"+ip, max, h.RL.Window)
	if allowed {
		return nil
	}
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 0 {
		secs = 0
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many attempts. Please try again later."})
}

func (h *AuthHandler) issuePair(userID uint64) (access, refresh token.Signed, err error) {
	sub := strconv.FormatUint(userID, 10)
	access, err = h.Tokens.IssueAccess(sub)
	if err != nil {
		return token.Signed{}, token.Signed{}, err
	}
	refresh, err = h.Tokens.IssueRefresh(sub)
	if err != nil {
		return token.Signed{}, token.Signed{}, err
	}
	return access, refresh, nil
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) audit(ctx context.Context, event string, u repository.User) {
	if h.Events == nil {
		return
	}
	// best effort; the publisher logs its own failures
	_ = h.Events.PublishAuthEvent(ctx, queue.AuthEvent{
		Event:  event,
		UserID: u.ID,
		Email:  u.Email,
		At:     time.Now().UTC(),
	})
}
