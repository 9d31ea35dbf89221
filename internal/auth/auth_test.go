package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/wordapi/pkg/models"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager("secret_key_to_test", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager
}

func testUser() *models.User {
	return &models.User{
		ID:      7,
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		IsAdmin: false,
		Roles:   []models.Role{{ID: 1, Name: "create_word", AppID: 1}},
	}
}

func TestGenerateAndValidateAccess(t *testing.T) {
	manager := testManager(t)
	token, err := manager.GenerateAccess(testUser())
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}

	claims, err := manager.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Errorf("expected subject 7, got %d (%v)", id, err)
	}
	if claims.Name != "Ada" {
		t.Errorf("expected first name claim Ada, got %q", claims.Name)
	}
	if !claims.HasRole("create_word") || claims.HasRole("delete_word") {
		t.Errorf("unexpected roles: %v", claims.Roles)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	manager := testManager(t)
	refresh, err := manager.GenerateRefresh(7)
	if err != nil {
		t.Fatalf("GenerateRefresh: %v", err)
	}
	if _, err := manager.ValidateAccess(refresh); err == nil {
		t.Error("refresh token must not validate as access token")
	}
	if _, err := manager.ValidateRefresh(refresh); err != nil {
		t.Errorf("ValidateRefresh: %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager := testManager(t)
	other, err := NewManager("completely-different-secret", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	token, err := other.GenerateAccess(testUser())
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}
	if _, err := manager.ValidateAccess(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestNewManagerEmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour, time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	manager := testManager(t)
	token, err := manager.GenerateAccess(testUser())
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			t.Error("claims missing from context")
		} else if id, _ := claims.UserID(); id != 7 {
			t.Errorf("expected user 7, got %d", id)
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(manager)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard/total_hits_last_30days", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequireAdminMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireAdmin()(next)

	r := httptest.NewRequest(http.MethodGet, "/api/users/", nil)
	r = r.WithContext(WithClaims(r.Context(), &Claims{IsAdmin: false}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin: expected 403, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/users/", nil)
	r = r.WithContext(WithClaims(r.Context(), &Claims{IsAdmin: true}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}

func TestRequireRoleOrAdminMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireRoleOrAdmin("update_word")(next)

	tests := []struct {
		name   string
		claims *Claims
		want   int
	}{
		{"has role", &Claims{Roles: []string{"update_word"}}, http.StatusOK},
		{"admin without role", &Claims{IsAdmin: true}, http.StatusOK},
		{"other role only", &Claims{Roles: []string{"create_word"}}, http.StatusForbidden},
		{"no roles", &Claims{}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/api/words/1", nil)
			r = r.WithContext(WithClaims(r.Context(), tt.claims))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestIsSelfOrAdmin(t *testing.T) {
	self := &Claims{}
	self.Subject = "5"
	if !IsSelfOrAdmin(self, 5) {
		t.Error("owner must pass")
	}
	if IsSelfOrAdmin(self, 6) {
		t.Error("other user must fail")
	}
	admin := &Claims{IsAdmin: true}
	admin.Subject = "1"
	if !IsSelfOrAdmin(admin, 6) {
		t.Error("admin must pass for any resource")
	}
}
