package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// e2eは起動済みサーバーに対して叩く。BASE_URL未設定ならスキップ
type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		t.Skip("BASE_URL not set; skipping e2e")
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

type MenuItemDTO struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Inventory     int64   `json:"inventory"`
	PriceAfterTax float64 `json:"price_after_tax"`
	CategoryID    int64   `json:"category_id"`
}

type MenuListResponse struct {
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Items   []MenuItemDTO `json:"items"`
}

type CartItemDTO struct {
	ID         int64   `json:"id"`
	MenuItemID int64   `json:"menu_item_id"`
	Title      string  `json:"title"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Price      float64 `json:"price"`
}

type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total float64       `json:"total"`
}

type OrderDTO struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	DeliveryCrewID *int64  `json:"delivery_crew_id"`
	Status         string  `json:"status"`
	Total          float64 `json:"total"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// 衝突しないユーザーを作ってログインし、tokenを返す
func registerAndLogin(t *testing.T, c *TestClient, ctx context.Context) (UserDTO, string) {
	t.Helper()

	username := fmt.Sprintf("user%d", time.Now().UnixNano())
	email := username + "@example.com"
	password := "password123"

	b, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", b)
	requireStatus(t, resp, http.StatusCreated, body)

	b, _ = json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", b)
	requireStatus(t, resp, http.StatusOK, body)

	var login LoginResponse
	mustDecode(t, body, &login)
	if strings.TrimSpace(login.Token) == "" {
		t.Fatalf("token is empty: body=%s", string(body))
	}

	return login.User, login.Token
}

// マネージャでログインしてtokenを取得。シード済みアカウントが前提
func managerLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	username := os.Getenv("MANAGER_USERNAME")
	password := os.Getenv("MANAGER_PASSWORD")
	if username == "" || password == "" {
		t.Skip("MANAGER_USERNAME/MANAGER_PASSWORD not set; skipping manager e2e")
	}

	b, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", b)
	requireStatus(t, resp, http.StatusOK, body)

	var login LoginResponse
	mustDecode(t, body, &login)
	if login.User.Role != "MANAGER" {
		t.Fatalf("seeded account is not a manager: role=%s", login.User.Role)
	}

	return login.Token
}
