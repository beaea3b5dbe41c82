package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("text"))
	})
	r.POST("/slack/commands", handlers...)
	return r
}

func signedRequest(secret, body string, ts time.Time) *http.Request {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + stamp + ":" + body))

	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", stamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestVerifySlackSignature(t *testing.T) {
	r := newEngine(VerifySlackSignature("shh"))
	body := "user_id=U1&text=leaderboard"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("shh", body, time.Now()))
	if w.Code != http.StatusOK || w.Body.String() != "leaderboard" {
		t.Fatalf("подписанный запрос: %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("wrong", body, time.Now()))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("чужая подпись: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("shh", body, time.Now().Add(-time.Hour)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("старая метка времени: %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("без подписи: %d", w.Code)
	}
}

func TestVerifySlackSignatureDisabled(t *testing.T) {
	r := newEngine(VerifySlackSignature(""))
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader("text=rules"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "rules" {
		t.Fatalf("без secret проверка выключена: %d %q", w.Code, w.Body.String())
	}
}

func TestNilRateLimiterPassesThrough(t *testing.T) {
	var l *RedisRateLimiter
	r := newEngine(l.Middleware(func(c *gin.Context) string { return "U1" }, nil))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader("text=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("запрос %d: %d", i, w.Code)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisRateLimiter(client, 1, time.Minute)
	r := newEngine(l.Middleware(func(c *gin.Context) string { return c.PostForm("user_id") }, nil))

	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader("user_id=U1&text=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("при недоступном redis запросы пропускаются: %d", w.Code)
	}
}

func TestInitRedisRateLimiterDisabled(t *testing.T) {
	if l := InitRedisRateLimiter("", "", 0, 20); l != nil {
		t.Fatalf("без адреса лимитер выключен")
	}
}
