package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleTechnician}
	token, expires, err := GenerateToken(user, "secret", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	actor, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, models.RoleTechnician, actor.Role)

	_, err = ParseToken(token, "other")
	assert.Error(t, err)

	expired, _, err := GenerateToken(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.Error(t, err)
}

func TestParseToken_RejectsUnknownRole(t *testing.T) {
	token, _, err := GenerateToken(&models.User{ID: uuid.New(), Role: "OWNER"}, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware("secret"), func(c *gin.Context) {
		c.String(http.StatusOK, string(ActorFrom(c).Role))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := GenerateToken(&models.User{ID: uuid.New(), Role: models.RoleAdmin}, "secret", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN", w.Body.String())
}
