package auth

import (
	"crypto/rand"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"menu-admin-go/logger"
	"menu-admin-go/models"
)

const (
	sessionName = "session"

	keyAuthenticated = "authenticated"
	keyUsername      = "username"
	keyRoles         = "roles"

	// contextUserKey caches the decoded user on the gin context.
	contextUserKey = "currentUser"
)

// Sessions manages the login cookie and flash messages.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates a cookie store. An empty secret gets a random key,
// which invalidates sessions on every restart.
func NewSessions(secret string) *Sessions {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(err)
		}
		logger.GetLogger().Warnw("SESSION_SECRET not set, using a random key")
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		// undecodable cookie: start over with a fresh session
		sess, _ = s.store.New(r, sessionName)
	}
	return sess
}

// Login stores the user in the session cookie.
func (s *Sessions) Login(c *gin.Context, user *models.User) error {
	sess := s.session(c.Request)
	sess.Values[keyAuthenticated] = true
	sess.Values[keyUsername] = user.Username
	sess.Values[keyRoles] = strings.Join(user.Roles, ",")
	c.Set(contextUserKey, user)
	return sess.Save(c.Request, c.Writer)
}

// Logout expires the session cookie.
func (s *Sessions) Logout(c *gin.Context) error {
	sess := s.session(c.Request)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	c.Set(contextUserKey, (*models.User)(nil))
	return sess.Save(c.Request, c.Writer)
}

// CurrentUser returns the logged-in user or nil.
func (s *Sessions) CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextUserKey); ok {
		u, _ := v.(*models.User)
		return u
	}
	u := s.userFromRequest(c.Request)
	c.Set(contextUserKey, u)
	return u
}

func (s *Sessions) userFromRequest(r *http.Request) *models.User {
	sess := s.session(r)
	if auth, ok := sess.Values[keyAuthenticated].(bool); !ok || !auth {
		return nil
	}
	username, _ := sess.Values[keyUsername].(string)
	roles, _ := sess.Values[keyRoles].(string)
	u := &models.User{Username: username}
	if roles != "" {
		u.Roles = strings.Split(roles, ",")
	}
	return u
}

// AddFlash queues a one-time message for the next rendered page.
func (s *Sessions) AddFlash(c *gin.Context, message string) {
	sess := s.session(c.Request)
	sess.AddFlash(message)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.GetLogger().Errorw("failed to save flash message", "error", err)
	}
}

// Flashes pops the queued messages.
func (s *Sessions) Flashes(c *gin.Context) []string {
	sess := s.session(c.Request)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.GetLogger().Errorw("failed to clear flash messages", "error", err)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// RequireRoleAPI rejects API calls lacking role with 403, logged-out
// callers included.
func (s *Sessions) RequireRoleAPI(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.HasRole(s.CurrentUser(c), role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"type":    "AccessDeniedException",
				"message": "Access Denied",
			})
			return
		}
		c.Next()
	}
}

// RequireRolePage redirects logged-out visitors to the login page and
// answers 403 to users lacking role.
func (s *Sessions) RequireRolePage(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := s.CurrentUser(c)
		if u == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if !models.HasRole(u, role) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUserHandler handles GET /api/currentUser
func (s *Sessions) CurrentUserHandler(c *gin.Context) {
	u := s.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false, "roles": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "username": u.Username, "roles": u.Roles})
}
