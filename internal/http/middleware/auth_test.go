package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking-service/internal/auth"
	"tracking-service/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: uuid.New(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Auth(auth.NewParser(testSecret)), func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": principal.Role})
	})
	return r
}

func requestWithHeader(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	rec := requestWithHeader(newAuthTestRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	rec := requestWithHeader(newAuthTestRouter(), "Token abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", model.RoleOwner)
	rec := requestWithHeader(newAuthTestRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A valid signature is not enough; the role claim has to be one the admin
// surface accepts.
func TestAuthRejectsUnknownRole(t *testing.T) {
	token := signToken(t, testSecret, "VIEWER")
	rec := requestWithHeader(newAuthTestRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthAcceptsOwnerAndAdmin(t *testing.T) {
	router := newAuthTestRouter()
	for _, role := range []string{model.RoleOwner, model.RoleAdmin} {
		token := signToken(t, testSecret, role)
		rec := requestWithHeader(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}
}
