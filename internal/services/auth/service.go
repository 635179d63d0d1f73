package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/adminauth"
)

const (
	MinRefreshTTL = 7 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour

	oauthStateTTL = 10 * time.Minute
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type UserStore interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByGoogleSubject(ctx context.Context, subject string) (model.User, error)
	LinkGoogle(ctx context.Context, id, subject string, now time.Time) error
	SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error
	SetOnboardingComplete(ctx context.Context, id string, now time.Time) error
}

// TokenStore keeps single-use tokens. Consume must fail for unknown or expired tokens.
type TokenStore interface {
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type PasswordResetConfig struct {
	BaseURL string
	TTL     time.Duration
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	users      UserStore
	tokens     TokenStore
	mailer     Mailer
	google     GoogleProvider
	reset      PasswordResetConfig
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, users UserStore, refreshTTL time.Duration) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		users:      users,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *Service) AttachTokens(tokens TokenStore) {
	s.tokens = tokens
}

func (s *Service) AttachPasswordReset(mailer Mailer, cfg PasswordResetConfig) {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	s.mailer = mailer
	s.reset = cfg
}

func (s *Service) AttachGoogle(provider GoogleProvider) {
	s.google = provider
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok || !validPassword(in.Password) {
		return AuthResult{}, ErrInvalidInput
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Provider:     model.AuthProviderEmail,
		Role:         enums.RoleMember,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueForUser(ctx, user)
}

// Login checks email and password. Admins with an enabled second factor must also pass a TOTP code.
func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok || in.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	if user.Role.IsAdmin() && user.TOTPEnabled {
		if strings.TrimSpace(in.TOTPCode) == "" {
			return AuthResult{}, ErrTOTPRequired
		}
		if !adminauth.ValidateTOTP(user.TOTPSecret, in.TOTPCode, s.now().UTC()) {
			return AuthResult{}, ErrInvalidCredentials
		}
	}

	return s.issueForUser(ctx, user)
}

// GoogleAuthURL starts the Google sign-in redirect with a single-use state value.
func (s *Service) GoogleAuthURL(ctx context.Context) (string, error) {
	if s.google == nil || s.tokens == nil {
		return "", ErrUnavailable
	}
	state, err := newOAuthState()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	if err := s.tokens.SaveOAuthState(ctx, state, oauthStateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback signs in the Google account, linking it to an existing user with the
// same email or creating a member on first login.
func (s *Service) GoogleCallback(ctx context.Context, state, code string) (AuthResult, error) {
	if s.google == nil || s.tokens == nil {
		return AuthResult{}, ErrUnavailable
	}
	if strings.TrimSpace(state) == "" || strings.TrimSpace(code) == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if err := s.tokens.ConsumeOAuthState(ctx, state); err != nil {
		return AuthResult{}, ErrUnauthorized
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return AuthResult{}, fmt.Errorf("google exchange: %w", err)
	}

	user, err := s.users.GetByGoogleSubject(ctx, profile.Subject)
	if err == nil {
		return s.issueForUser(ctx, user)
	}
	if !errors.Is(err, pgrepo.ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("get user by google subject: %w", err)
	}

	email, ok := normalizeEmail(profile.Email)
	if !ok || !profile.EmailVerified {
		return AuthResult{}, ErrUnauthorized
	}

	user, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, user.ID, profile.Subject, s.now()); err != nil {
			return AuthResult{}, fmt.Errorf("link google account: %w", err)
		}
	case errors.Is(err, pgrepo.ErrUserNotFound):
		user, err = s.users.Create(ctx, model.User{
			ID:            uuid.NewString(),
			Email:         email,
			Name:          strings.TrimSpace(profile.Name),
			Provider:      model.AuthProviderGoogle,
			GoogleSubject: profile.Subject,
			Role:          enums.RoleMember,
			CreatedAt:     s.now().UTC(),
		})
		if err != nil {
			return AuthResult{}, fmt.Errorf("create google user: %w", err)
		}
	default:
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}

	return s.issueForUser(ctx, user)
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, rawEmail string) error {
	if s.tokens == nil || s.mailer == nil {
		return ErrUnavailable
	}
	email, ok := normalizeEmail(rawEmail)
	if !ok {
		return ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.tokens.SaveResetToken(ctx, token, user.ID, s.reset.TTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	link := strings.TrimRight(s.reset.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`<p>Namaste %s,</p><p>Use the link below to choose a new password. It expires in %d minutes.</p><p><a href="%s">Reset password</a></p>`,
		displayName(user), int(s.reset.TTL.Minutes()), link)
	if err := s.mailer.Send(ctx, user.Email, "Reset your Bari Samaj password", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.tokens == nil {
		return ErrUnavailable
	}
	if strings.TrimSpace(token) == "" || !validPassword(newPassword) {
		return ErrInvalidInput
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return ErrResetTokenInvalid
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash, s.now()); err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, s.now().Add(s.refreshTTL)); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID, session.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:   session.UserID,
			Role: session.Role,
		},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RevokeUser ends every session of userID so a role change applies on next sign-in.
func (s *Service) RevokeUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != claims.UserID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) Me(ctx context.Context, userID string) (Me, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Me{}, ErrUnauthorized
		}
		return Me{}, fmt.Errorf("get user: %w", err)
	}
	return toMe(user), nil
}

func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (Me, error) {
	if err := s.users.SetOnboardingComplete(ctx, userID, s.now()); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Me{}, ErrUnauthorized
		}
		return Me{}, fmt.Errorf("complete onboarding: %w", err)
	}
	return s.Me(ctx, userID)
}

func (s *Service) issueForUser(ctx context.Context, user model.User) (AuthResult, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	role := string(user.Role)
	session := SessionRecord{
		SID:       sessionID,
		UserID:    user.ID,
		Role:      role,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, sessionID, role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		Me:            toMe(user),
	}, nil
}

func toMe(user model.User) Me {
	return Me{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Role:               string(user.Role),
		OnboardingComplete: user.OnboardingComplete,
	}
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

func displayName(user model.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.Email
}
