package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"

	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
)

type fakeConfig struct {
	config.Config
}

func (fakeConfig) GetArray(string) []string { return nil }

type fakeStringID struct{}

func (fakeStringID) Generate() string { return "cid-123" }

type fakeJWT struct {
	tokens map[string]jwt.Claims
}

func (f *fakeJWT) Generate(uid int64, email, role string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeJWT) Verify(tokenStr string) (jwt.Claims, error) {
	clm, ok := f.tokens[tokenStr]
	if !ok {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return clm, nil
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("casbin model: %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("casbin enforcer: %v", err)
	}
	for _, p := range [][3]string{
		{"user", "/api/user/*", "*"},
		{"admin", "/api/user/*", "*"},
		{"admin", "/api/admin/*", "GET"},
	} {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			t.Fatalf("casbin policy: %v", err)
		}
	}
	return e
}

func newTestRouter(t *testing.T) (*Router, *fakeJWT) {
	t.Helper()

	verifier := &fakeJWT{tokens: map[string]jwt.Claims{
		"user-token":  {UserID: 42, UserEmail: "jane@example.com", UserRole: "user"},
		"admin-token": {UserID: 1, UserEmail: "root@example.com", UserRole: "admin"},
	}}

	r := NewRouter(Config{
		Config:     fakeConfig{},
		UUID:       fakeStringID{},
		JWT:        verifier,
		Instrument: instrument.NewNoop(),
		Enforcer:   newTestEnforcer(t),
	})
	return r, verifier
}

func do(t *testing.T, r *Router, req *http.Request) *http.Response {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Result()
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	res.Body.Close()
	return body
}

func TestRouterAuthentication(t *testing.T) {
	t.Run("PublicEndpointSkipsAuth", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return map[string]string{"ok": "yes"}, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
	})

	t.Run("LogoutIsPublicAndSetsCookies", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/logout", func(req *Request) (any, error) {
			return expiredCookieResponse{}, nil
		})

		// No Authorization header and no access cookie.
		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/logout", nil))

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 without token, got %d", res.StatusCode)
		}
		var cleared bool
		for _, c := range res.Cookies() {
			if c.Name == "refresh_token" && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected an expired refresh_token cookie in the response")
		}
	})

	t.Run("ProtectedWithoutToken", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/user/profile", func(req *Request) (any, error) {
			t.Fatal("handler must not run without auth")
			return nil, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodGet, "/api/user/profile", nil))

		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.StatusCode)
		}
	})

	t.Run("BearerToken", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/user/profile", func(req *Request) (any, error) {
			clm := jwt.GetAuth(req.Context())
			if clm == nil || clm.UserID != 42 {
				t.Fatalf("claims not propagated: %+v", clm)
			}
			return map[string]string{"ok": "yes"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer user-token")
		res := do(t, r, req)

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
	})

	t.Run("CookieFallback", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/user/profile", func(req *Request) (any, error) {
			return map[string]string{"ok": "yes"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "user-token"})
		res := do(t, r, req)

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 via cookie, got %d", res.StatusCode)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/user/profile", func(req *Request) (any, error) {
			return nil, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer forged")
		res := do(t, r, req)

		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.StatusCode)
		}
	})
}

func TestRouterAuthorization(t *testing.T) {
	t.Run("RoleAllowed", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/admin/users", func(req *Request) (any, error) {
			return map[string]string{"ok": "yes"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		res := do(t, r, req)

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for admin, got %d", res.StatusCode)
		}
	})

	t.Run("RoleForbidden", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.GET("/api/admin/users", func(req *Request) (any, error) {
			t.Fatal("handler must not run for forbidden role")
			return nil, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer user-token")
		res := do(t, r, req)

		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 for user, got %d", res.StatusCode)
		}
	})
}

type expiredCookieResponse struct{}

func (expiredCookieResponse) Message() string { return "logged out" }

func (expiredCookieResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: "refresh_token", Value: "", Path: "/api", MaxAge: -1, HttpOnly: true}}
}

type cookieResponse struct {
	Ready bool `json:"ready"`
}

func (cookieResponse) Message() string { return "logged in" }

func (cookieResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: "session", Value: "abc", Path: "/", HttpOnly: true}}
}

type createdResponse struct{}

func (createdResponse) StatusCode() int { return http.StatusCreated }

func TestRouterEncoding(t *testing.T) {
	t.Run("SuccessEnvelope", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return cookieResponse{Ready: true}, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		body := decodeBody(t, res)
		if body["message"] != "logged in" {
			t.Fatalf("custom message not used: %v", body)
		}
		cookies := res.Cookies()
		if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "abc" {
			t.Fatalf("response cookies not set: %+v", cookies)
		}
	})

	t.Run("CreatedStatus", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/sign", func(req *Request) (any, error) {
			return createdResponse{}, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/sign", nil))

		if res.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", res.StatusCode)
		}
	})

	t.Run("NilResponseIsNoContent", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return nil, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if res.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", res.StatusCode)
		}
	})

	t.Run("BusinessErrorMapping", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.StatusCode)
		}
		body := decodeBody(t, res)
		if body["message"] != "Invalid credentials" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("ErrorWithCookiesClearsSession", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/refresh-token", func(req *Request) (any, error) {
			err := goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
			return nil, WithCookies(err, &http.Cookie{Name: "refresh_token", Value: "", Path: "/api", MaxAge: -1})
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/refresh-token", nil))

		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.StatusCode)
		}
		cookies := res.Cookies()
		if len(cookies) != 1 || cookies[0].Name != "refresh_token" {
			t.Fatalf("expected cleared refresh cookie, got %+v", cookies)
		}
		if cookies[0].MaxAge >= 0 && cookies[0].Value != "" {
			t.Fatalf("cookie not cleared: %+v", cookies[0])
		}
	})

	t.Run("UnknownErrorIs500", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return nil, errors.New("boom")
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if res.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", res.StatusCode)
		}
	})
}

func TestRouterCorrelationID(t *testing.T) {
	t.Run("GeneratedWhenAbsent", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return nil, nil
		})

		res := do(t, r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))

		if got := res.Header.Get(HeaderCorrelationID); got != "cid-123" {
			t.Fatalf("expected generated correlation id, got %q", got)
		}
	})

	t.Run("EchoedWhenPresent", func(t *testing.T) {
		r, _ := newTestRouter(t)
		r.POST("/api/user/login", func(req *Request) (any, error) {
			return nil, nil
		})

		req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
		req.Header.Set(HeaderCorrelationID, "client-supplied")
		res := do(t, r, req)

		if got := res.Header.Get(HeaderCorrelationID); got != "client-supplied" {
			t.Fatalf("expected echoed correlation id, got %q", got)
		}
	})
}
