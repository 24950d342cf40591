package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrRegistrationClosed  = errors.New("registration is disabled")
	errUnexpectedSigning   = errors.New("unexpected signing method")
	errInvalidToken        = errors.New("invalid or expired token")
	errInvalidTokenSubject = errors.New("invalid token subject")
)

const (
	tokenIssuer       = "jaygoga"
	userStoreTimeout  = 5 * time.Second
	minUsernameLength = 4
	minPasswordLength = 8
)

type AuthManager struct {
	mu        sync.RWMutex
	secret    []byte
	tokenTTL  time.Duration
	userStore UserStore
	users     map[string]credential
}

type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

type credential struct {
	password string
	role     string
	active   bool
	created  time.Time
}

type ownerClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, userStore UserStore) *AuthManager {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	manager := &AuthManager{
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		userStore: userStore,
		users:     make(map[string]credential),
	}
	ctx, cancel := context.WithTimeout(context.Background(), userStoreTimeout)
	defer cancel()
	manager.bootstrapUsers(ctx)
	return manager
}

// Login refreshes the credential cache from the store so accounts created by another
// instance can sign in.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	storeCtx, cancel := context.WithTimeout(ctx, userStoreTimeout)
	a.bootstrapUsers(storeCtx)
	cancel()

	username := normalizeUsername(req.Username)
	a.mu.RLock()
	cred, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if !verifyPassword(cred.password, req.Password) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if !cred.active {
		return domain.LoginResponse{}, ErrInactiveAccount
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, cred.role, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Role:        cred.role,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

// Register creates a new owner account. Every account owns its own customers, products
// and orders.
func (a *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) (domain.Account, error) {
	username := normalizeUsername(req.Username)
	if len(username) < minUsernameLength {
		return domain.Account{}, fmt.Errorf("%w: username must be at least %d characters", store.ErrInvalidInput, minUsernameLength)
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return domain.Account{}, fmt.Errorf("%w: username must not contain spaces", store.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Password) == "" || len(req.Password) < minPasswordLength {
		return domain.Account{}, fmt.Errorf("%w: password must be at least %d characters", store.ErrInvalidInput, minPasswordLength)
	}

	a.mu.RLock()
	_, exists := a.users[username]
	a.mu.RUnlock()
	if exists {
		return domain.Account{}, fmt.Errorf("%w: username already exists", store.ErrConflict)
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	if a.userStore != nil {
		err := a.userStore.CreateUser(ctx, domain.UserAccount{
			Username:  username,
			Password:  passwordHash,
			Role:      domain.RoleOwner,
			Active:    true,
			CreatedAt: now,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return domain.Account{}, fmt.Errorf("%w: username already exists", store.ErrConflict)
			}
			return domain.Account{}, err
		}
	}

	a.mu.Lock()
	a.users[username] = credential{
		password: passwordHash,
		role:     domain.RoleOwner,
		active:   true,
		created:  now,
	}
	a.mu.Unlock()

	return domain.Account{
		Username:  username,
		Role:      domain.RoleOwner,
		Active:    true,
		CreatedAt: now,
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &ownerClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigning
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return domain.Actor{}, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errInvalidTokenSubject
	}
	return domain.Actor{Username: sub, Role: claims.Role}, nil
}

func (a *AuthManager) sign(username, role string, expiresAt time.Time) (string, error) {
	claims := ownerClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    tokenIssuer,
		},
		Role: role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// bootstrapUsers loads user accounts from the user store into the in-memory
// credential cache. Legacy plain-text passwords are upgraded to bcrypt hashes in the
// store on the way.
func (a *AuthManager) bootstrapUsers(ctx context.Context) {
	if a.userStore == nil {
		return
	}

	users, err := a.userStore.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, user := range users {
		username := normalizeUsername(user.Username)
		if username == "" {
			continue
		}
		password := user.Password
		if !isPasswordHash(password) {
			hashed, err := hashPassword(password)
			if err == nil {
				password = hashed
				_ = a.userStore.UpdateUserPassword(ctx, username, hashed)
			}
		}
		a.users[username] = credential{
			password: password,
			role:     user.Role,
			active:   user.Active,
			created:  user.CreatedAt,
		}
	}
}

func normalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
