// Package resolver is the username-to-email lookup service. Clients
// sign in with email+password only; this service lets them start from
// a username by translating it with elevated credentials the client
// never holds.
package resolver

import (
	"errors"
	"net/http"

	"github.com/semtetteh/semsterapp/internal/directory"
	"github.com/semtetteh/semsterapp/internal/logger"
	"github.com/semtetteh/semsterapp/internal/profile"

	"github.com/gin-gonic/gin"
)

// genericError is the only credential failure message this service
// produces. A missing username, a duplicate username and a missing
// account all read identically so responses cannot be used to probe
// which usernames exist.
const genericError = "Invalid username or password"

type Handler struct {
	profiles  profile.Store
	directory directory.Directory
}

func NewHandler(profiles profile.Store, dir directory.Directory) *Handler {
	return &Handler{
		profiles:  profiles,
		directory: dir,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/resolve", h.Resolve)
	r.OPTIONS("/resolve", h.Preflight)
}

type resolveRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Preflight(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Resolve maps username to account email. The password is carried but
// not verified here; verification happens in the caller's own sign-in.
func (h *Handler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	p, err := h.profiles.GetByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, profile.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": genericError})
		return
	}
	if err != nil {
		logger.Error("profile lookup failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	email, err := h.directory.EmailByID(c.Request.Context(), p.ID)
	if err != nil {
		// account miss and lookup failure collapse to the same status
		c.JSON(http.StatusUnauthorized, gin.H{"error": genericError})
		return
	}

	// email only; never the password, never the profile row
	c.JSON(http.StatusOK, gin.H{"email": email})
}
