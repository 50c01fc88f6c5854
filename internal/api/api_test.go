package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/jlcaburian/bodega/internal/db"
	"github.com/jlcaburian/bodega/internal/model"
	"github.com/jlcaburian/bodega/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "Administrator", "admin", string(hash), model.RoleAdmin)

	return server, login(t, server, "admin", "password")
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func createTestItem(t *testing.T, server *httptest.Server, token, name string, amount int) model.Item {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":      name,
		"unit":      "pcs",
		"amount":    amount,
		"price":     5,
		"costprice": 3,
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating item, got %d", resp.StatusCode)
	}

	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	return item
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Branding is public.
	resp, _ = http.Get(server.URL + "/api/settings")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for public settings, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	item := createTestItem(t, server, token, "Laptop", 10)
	if item.Name != "Laptop" {
		t.Errorf("expected name 'Laptop', got %q", item.Name)
	}

	// Invalid unit is rejected.
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Bad", "unit": "furlongs", "amount": 1,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid unit, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// List includes statistics and the catalog.
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var listResp struct {
		Items      []model.Item   `json:"items"`
		Statistics map[string]any `json:"statistics"`
	}
	json.NewDecoder(resp.Body).Decode(&listResp)
	resp.Body.Close()
	if len(listResp.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(listResp.Items))
	}
	if listResp.Statistics["today_added"] != float64(1) {
		t.Errorf("expected today_added 1, got %v", listResp.Statistics["today_added"])
	}

	// Update then fetch.
	req, _ = authRequest("PUT", server.URL+"/api/items/1", token, map[string]any{
		"name": "Laptop Pro", "unit": "pcs", "amount": 8, "price": 6, "costprice": 3,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 updating item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/items/1/logs", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching logs, got %d", resp.StatusCode)
	}
	var history store.ItemHistory
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()
	if len(history.AddLogs) != 2 {
		t.Errorf("expected creation + update logs, got %d", len(history.AddLogs))
	}

	// Delete, then 404.
	req, _ = authRequest("DELETE", server.URL+"/api/items/1", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/items/1", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStockMovementFlow(t *testing.T) {
	server, token := setupTestServer(t)
	item := createTestItem(t, server, token, "Flour", 10)

	// Pull in 5.
	req, _ := authRequest("POST", server.URL+"/api/pull-in", token, map[string]any{
		"item_id": item.ID, "quantity": 5, "notes": "delivery",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for pull-in, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Pull out 3.
	req, _ = authRequest("POST", server.URL+"/api/pull-out", token, map[string]any{
		"item_id": item.ID, "quantity": 3,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for pull-out, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Sell 4 at 6 each.
	req, _ = authRequest("POST", server.URL+"/api/sell-item", token, map[string]any{
		"item_id": item.ID, "quantity": 4, "selling_price": 6,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for sell, got %d", resp.StatusCode)
	}
	var sellResp struct {
		Message string     `json:"message"`
		Item    model.Item `json:"item"`
	}
	json.NewDecoder(resp.Body).Decode(&sellResp)
	resp.Body.Close()
	if sellResp.Message != "Item sold successfully! Revenue: 24.00" {
		t.Errorf("unexpected sell message: %q", sellResp.Message)
	}
	if sellResp.Item.Amount.String() != "8" {
		t.Errorf("expected amount 8 after movements, got %s", sellResp.Item.Amount)
	}

	// Overselling returns 422 with the available stock.
	req, _ = authRequest("POST", server.URL+"/api/sell-item", token, map[string]any{
		"item_id": item.ID, "quantity": 100, "selling_price": 6,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for oversell, got %d", resp.StatusCode)
	}
	var errResp map[string]string
	json.NewDecoder(resp.Body).Decode(&errResp)
	resp.Body.Close()
	if errResp["error"] != "Insufficient stock! Available: 8.00 pcs" {
		t.Errorf("unexpected error message: %q", errResp["error"])
	}

	// Unknown item returns 404.
	req, _ = authRequest("POST", server.URL+"/api/pull-out", token, map[string]any{
		"item_id": 999, "quantity": 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMovementPages(t *testing.T) {
	server, token := setupTestServer(t)
	createTestItem(t, server, token, "Stocked", 10)

	for _, path := range []string{"/api/pull-in", "/api/pull-out", "/api/sell-item", "/api/dashboard"} {
		req, _ := authRequest("GET", server.URL+path, token, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestRoleBasedAccess(t *testing.T) {
	server, adminToken := setupTestServer(t)

	// Create a plain user through the admin API.
	req, _ := authRequest("POST", server.URL+"/api/users", adminToken, map[string]string{
		"name": "Regular", "username": "regular", "password": "password123", "role": model.RoleUser,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating user, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	userToken := login(t, server, "regular", "password123")

	// Plain users can read items but not create them.
	req, _ = authRequest("GET", server.URL+"/api/items", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for user read, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/items", userToken, map[string]any{
		"name": "Denied", "unit": "pcs", "amount": 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user write, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Plain users cannot manage users.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user management, got %d", resp.StatusCode)
	}
	resp.Body.Close()

}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProfileFlow(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/profile", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for profile, got %d", resp.StatusCode)
	}
	var user model.User
	json.NewDecoder(resp.Body).Decode(&user)
	resp.Body.Close()
	if user.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", user.Username)
	}

	req, _ = authRequest("PUT", server.URL+"/api/profile", token, map[string]string{
		"name": "Head Admin", "username": "admin",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&user)
	resp.Body.Close()
	if user.Name != "Head Admin" {
		t.Errorf("expected updated name, got %q", user.Name)
	}

	// Wrong password blocks account deletion.
	req, _ = authRequest("DELETE", server.URL+"/api/profile", token, map[string]string{
		"password": "wrong",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Correct password deletes the account and invalidates the token.
	req, _ = authRequest("DELETE", server.URL+"/api/profile", token, map[string]string{
		"password": "password",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting account, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/profile", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after account deletion, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChangePassword(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "password", "new_password": "newpassword",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 changing password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Old password no longer works, new one does.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with old password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	login(t, server, "admin", "newpassword")
}

func TestSystemSettingsFlow(t *testing.T) {
	server, adminToken := setupTestServer(t)

	req, _ := authRequest("PUT", server.URL+"/api/settings", adminToken, map[string]string{
		"name": "Corner Store",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 updating settings, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(server.URL + "/api/settings")
	var settings model.SystemSettings
	json.NewDecoder(resp.Body).Decode(&settings)
	resp.Body.Close()
	if settings.Name != "Corner Store" {
		t.Errorf("expected 'Corner Store', got %q", settings.Name)
	}

	// No image uploaded yet.
	resp, _ = http.Get(server.URL + "/api/settings/image")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing image, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUserManagementFlow(t *testing.T) {
	server, adminToken := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/users", adminToken, map[string]string{
		"name": "Mara", "username": "mara", "password": "password123", "role": model.RoleManager,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.User
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	// Duplicate username is rejected.
	req, _ = authRequest("POST", server.URL+"/api/users", adminToken, map[string]string{
		"name": "Clone", "username": "mara", "password": "password123",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Promote to admin.
	req, _ = authRequest("PUT", server.URL+"/api/users/"+strconv.FormatInt(created.ID, 10), adminToken, map[string]string{
		"role": model.RoleAdmin,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 updating role, got %d", resp.StatusCode)
	}
	var promoted model.User
	json.NewDecoder(resp.Body).Decode(&promoted)
	resp.Body.Close()
	if promoted.Role != model.RoleAdmin {
		t.Errorf("expected role admin, got %q", promoted.Role)
	}

	// Reset the password; the new one logs in.
	req, _ = authRequest("PUT", server.URL+"/api/users/"+strconv.FormatInt(created.ID, 10)+"/password", adminToken, map[string]string{
		"password": "resetpassword",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 resetting password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	login(t, server, "mara", "resetpassword")

	// Delete the user; their login stops working.
	req, _ = authRequest("DELETE", server.URL+"/api/users/"+strconv.FormatInt(created.ID, 10), adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 deleting user, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ := json.Marshal(map[string]string{"username": "mara", "password": "password123"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for deleted user login, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

