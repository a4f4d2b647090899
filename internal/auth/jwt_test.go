package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverse-market/internal/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(42, models.UserTypeSeller)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.UserTypeSeller, claims.UserType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	InitJWT("one")
	token, err := GenerateToken(1, models.UserTypeBuyer)
	require.NoError(t, err)

	InitJWT("two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitJWT("test-secret")
	token, err := GenerateToken(7, models.UserTypeBuyer)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id, _ := GetUserID(c)
		userType, _ := GetUserType(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "type": userType})
	})

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"type":1}`, rec.Body.String())
			}
		})
	}
}
