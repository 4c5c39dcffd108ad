package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/auth"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

const testSecret = "test-secret"

func bearer(t *testing.T, role domain.Role, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.Issue(testSecret, ttl, &domain.Account{ID: "acc-1", Role: role, ProfileID: "prof-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + tok
}

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AuthOptional(secret))
	r.GET("/whoami", func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"account": p.AccountID, "role": p.Role, "profile": p.ProfileID})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/routines", RequireRole(domain.RoleDoctor), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func call(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthOptional_ResolvesPrincipal(t *testing.T) {
	r := authRouter(testSecret)

	w := call(r, http.MethodGet, "/whoami", bearer(t, domain.RolePatient, time.Hour))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	var got map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got["account"] != "acc-1" || got["role"] != "patient" || got["profile"] != "prof-1" {
		t.Fatalf("principal = %v", got)
	}

	// Anonymous requests continue with the zero principal.
	w = call(r, http.MethodGet, "/whoami", "")
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got["account"] != "" {
		t.Fatalf("anonymous: code=%d principal=%v", w.Code, got)
	}
}

func TestAuthOptional_RejectsBadTokens(t *testing.T) {
	r := authRouter(testSecret)
	cases := map[string]string{
		"basic scheme": "Basic Zm9vOmJhcg==",
		"empty bearer": "Bearer ",
		"garbage":      "Bearer not-a-jwt",
		"expired":      bearer(t, domain.RolePatient, -time.Minute),
		"wrong secret": "Bearer " + mustIssue(t, "other-secret"),
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			w := call(r, http.MethodGet, "/whoami", authz)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("code=%d", w.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["code"] != "invalid_token" || body["request_id"] == "" {
				t.Fatalf("body=%v", body)
			}
		})
	}
}

func mustIssue(t *testing.T, secret string) string {
	t.Helper()
	tok, err := auth.Issue(secret, time.Hour, &domain.Account{ID: "x", Role: domain.RoleDoctor, ProfileID: "y"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestAuthOptional_NoSecretTreatsEveryoneAsAnonymous(t *testing.T) {
	r := authRouter("")
	if w := call(r, http.MethodGet, "/whoami", "Bearer anything"); w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	if w := call(r, http.MethodGet, "/private", "Bearer anything"); w.Code != http.StatusUnauthorized {
		t.Fatalf("private without secret: code=%d", w.Code)
	}
}

func TestRequireAuthAndRole(t *testing.T) {
	r := authRouter(testSecret)

	if w := call(r, http.MethodGet, "/private", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous private: %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/private", bearer(t, domain.RolePatient, time.Hour)); w.Code != http.StatusNoContent {
		t.Fatalf("authenticated private: %d", w.Code)
	}

	if w := call(r, http.MethodPost, "/routines", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous doctor route: %d", w.Code)
	}
	w := call(r, http.MethodPost, "/routines", bearer(t, domain.RolePatient, time.Hour))
	if w.Code != http.StatusForbidden {
		t.Fatalf("patient on doctor route: %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "forbidden" {
		t.Fatalf("body=%v", body)
	}
	if w := call(r, http.MethodPost, "/routines", bearer(t, domain.RoleDoctor, time.Hour)); w.Code != http.StatusCreated {
		t.Fatalf("doctor route: %d", w.Code)
	}
}
