package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"menu-admin-go/config"
	"menu-admin-go/logger"
	"menu-admin-go/models"
)

type account struct {
	hash  []byte
	roles []string
}

// Users is an in-memory directory of accounts with bcrypt-hashed passwords.
type Users struct {
	mu       sync.RWMutex
	accounts map[string]account
}

func NewUsers() *Users {
	return &Users{accounts: make(map[string]account)}
}

// NewUsersFromConfig creates the admin account (ROLE_ADMIN + ROLE_USER) and,
// when configured, a plain ROLE_USER account.
func NewUsersFromConfig(cfg config.AuthConfig) (*Users, error) {
	u := NewUsers()
	if cfg.AdminUsername != "" {
		if err := u.Register(cfg.AdminUsername, cfg.AdminPassword, models.RoleUser, models.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to register admin user: %w", err)
		}
		if cfg.AdminPassword == "admin" {
			logger.GetLogger().Warnw("admin user is using the default password", "username", cfg.AdminUsername)
		}
	}
	if cfg.UserUsername != "" {
		if err := u.Register(cfg.UserUsername, cfg.UserPassword, models.RoleUser); err != nil {
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Register adds or replaces an account. password may already be a bcrypt
// hash (as printed by the hash-password command).
func (u *Users) Register(username, password string, roles ...string) error {
	if username == "" || password == "" {
		return errors.New("username and password cannot be empty")
	}
	hash := []byte(password)
	if !isBcryptHash(password) {
		hashed, err := HashPassword(password)
		if err != nil {
			return err
		}
		hash = []byte(hashed)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.accounts[username] = account{hash: hash, roles: append([]string(nil), roles...)}
	return nil
}

// Authenticate checks the password and returns the user on success.
func (u *Users) Authenticate(username, password string) (*models.User, bool) {
	u.mu.RLock()
	acc, ok := u.accounts[username]
	u.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return nil, false
	}
	return &models.User{Username: username, Roles: append([]string(nil), acc.roles...)}, true
}
