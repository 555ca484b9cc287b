package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garud-store/internal/domain"
	tokenrepo "garud-store/internal/repository/token"
	userrepo "garud-store/internal/repository/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when login/password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailTaken is returned when another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when another account already uses the username.
	ErrUsernameTaken = errors.New("username already taken")
)

// Service handles registration, login and profile flows.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	logger      *zap.Logger
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service. ttl <= 0 falls back to one week.
func New(repo userrepo.Repository, tokens tokenrepo.Repository, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		logger:      logger.Named("account"),
		accessTTL:   ttl,
		passwordMin: 6,
	}
}

// RegisterInput captures the fields of the registration form.
type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileInput captures editable profile fields.
type ProfileInput struct {
	Fullname string         `json:"fullname"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Address  domain.Address `json:"address"`
}

// AdminSeed holds the bootstrap admin credentials.
type AdminSeed struct {
	Email    string
	Username string
	Password string
}

// Register creates a user with role user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	fullname := strings.TrimSpace(in.Fullname)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	switch {
	case fullname == "":
		return nil, fmt.Errorf("%w: fullname required", domain.ErrValidation)
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: valid email required", domain.ErrValidation)
	case username == "":
		return nil, fmt.Errorf("%w: username required", domain.ErrValidation)
	}
	if len(in.Password) < s.passwordMin {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, s.passwordMin)
	}

	if err := s.checkAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		Fullname:     fullname,
		Email:        email,
		Username:     username,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleUser,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// lost a race with a concurrent registration
		if err := s.checkAvailable(ctx, email, username); err != nil {
			return nil, err
		}
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Login accepts a username or an email and returns the user plus an access token.
func (s *Service) Login(ctx context.Context, login, password string) (*domain.User, string, error) {
	u, err := s.lookupLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes the token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile rewrites the editable fields of the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" {
		return nil, fmt.Errorf("%w: fullname required", domain.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", domain.ErrValidation)
	}
	if email != current.Email {
		other, err := s.repo.GetByEmail(ctx, email)
		if err == nil && other.ID != current.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	current.Fullname = fullname
	current.Email = email
	current.Phone = strings.TrimSpace(in.Phone)
	current.Address = domain.Address{
		Street:  strings.TrimSpace(in.Address.Street),
		City:    strings.TrimSpace(in.Address.City),
		State:   strings.TrimSpace(in.Address.State),
		Pincode: strings.TrimSpace(in.Address.Pincode),
	}
	u, err := s.repo.UpdateProfile(ctx, *current)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	return u, err
}

// EnsureAdmin creates the bootstrap admin when no admin exists yet. It
// reports whether a user was created. An empty password skips creation.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if seed.Password == "" {
		s.logger.Warn("no admin account exists and ADMIN_PASSWORD is empty; skipping admin bootstrap")
		return false, nil
	}
	if len(seed.Password) < s.passwordMin {
		return false, fmt.Errorf("%w: admin password must be at least %d characters", domain.ErrValidation, s.passwordMin)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		Fullname:     "Admin",
		Email:        strings.ToLower(strings.TrimSpace(seed.Email)),
		Username:     strings.TrimSpace(seed.Username),
		Role:         domain.RoleAdmin,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.logger.Warn("admin bootstrap skipped: email or username already in use", zap.String("username", seed.Username))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("admin user created", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return true, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) checkAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) lookupLogin(ctx context.Context, login string) (*domain.User, error) {
	if login == "" {
		return nil, domain.ErrNotFound
	}
	if strings.Contains(login, "@") {
		u, err := s.repo.GetByEmail(ctx, login)
		if !errors.Is(err, domain.ErrNotFound) {
			return u, err
		}
	}
	return s.repo.GetByUsername(ctx, login)
}
