package authmw_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/auth/jwtauth"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier map[string]*jwtauth.Principal

func (fv fakeVerifier) Parse(token string) (*jwtauth.Principal, error) {
	if p, ok := fv[token]; ok {
		return p, nil
	}
	return nil, cerr.Authentication(errors.New("unknown token"))
}

func TestRequiredAndRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	driver := &jwtauth.Principal{UserID: uuid.New(), Role: model.RoleUser}
	owner := &jwtauth.Principal{UserID: uuid.New(), Role: model.RoleOwner}
	v := fakeVerifier{"driver": driver, "owner": owner}

	e := gin.New()
	e.GET("/me", authmw.Required(v), func(c *gin.Context) {
		p, ok := authmw.PrincipalOf(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.UserID.String())
	})
	e.GET(
		"/owned", authmw.Required(v), authmw.RequireRole(model.RoleOwner),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)

	for _, tc := range []struct {
		name, path, header string
		code               int
		body               string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, ""},
		{"basic scheme", "/me", "Basic driver", http.StatusUnauthorized, ""},
		{"empty token", "/me", "Bearer  ", http.StatusUnauthorized, ""},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized, ""},
		{
			"valid token", "/me", "Bearer driver", http.StatusOK,
			driver.UserID.String(),
		},
		{
			"case insensitive scheme", "/me", "bearer owner",
			http.StatusOK, owner.UserID.String(),
		},
		{"wrong role", "/owned", "Bearer driver", http.StatusForbidden, ""},
		{"right role", "/owned", "Bearer owner", http.StatusNoContent, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestPrincipalOfUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	p, ok := authmw.PrincipalOf(c)
	assert.False(t, ok)
	assert.Nil(t, p)
}
