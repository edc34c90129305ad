package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
)

// RedisClient is an optional shared Redis client used as a token revocation
// store. It stays nil when REDIS_ADDR is not configured; logout then only
// clears the client-side token.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		return
	}
	RedisClient = rc
}

type contextKey string

const (
	UserIDKey     = contextKey("userID")
	UserRoleKey   = contextKey("userRole")
	ResidentIDKey = contextKey("residentID")
	RequestIDKey  = contextKey("requestID")
)

func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateAccessToken issues an HS256 access token carrying the user id, role
// and (for residents) the opaque resident id.
func GenerateAccessToken(userID uint, role, residentID string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	expiry := 24 * time.Hour
	if role == "admin" {
		expiry = 6 * time.Hour
	}
	now := time.Now()
	jti, err := generateJTI(24)
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"id":          userID,
		"role":        role,
		"resident_id": residentID,
		"exp":         now.Add(expiry).Unix(),
		"iat":         now.Unix(),
		"nbf":         now.Unix(),
		"jti":         jti,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken parses and validates an access token, rejecting revoked
// jtis when the Redis revocation store is available.
func ValidateAccessToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, errors.New("token expired")
		}
		return nil, nil, errors.New("invalid token")
	}
	if !token.Valid {
		return nil, nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return token, nil, errors.New("invalid claims")
	}
	if jti, ok := claims["jti"].(string); ok && RedisClient != nil {
		revoked, err := RedisClient.Exists(context.Background(), "revoked:"+jti).Result()
		if err == nil && revoked > 0 {
			return token, nil, errors.New("token revoked")
		}
	}
	return token, claims, nil
}

// RevokeToken marks a token's jti revoked until its natural expiry.
// Best-effort: without Redis there is nothing to record.
func RevokeToken(claims jwt.MapClaims) error {
	if RedisClient == nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return errors.New("token has no jti")
	}
	ttl := time.Hour
	if expRaw, ok := claims["exp"].(float64); ok {
		if until := time.Until(time.Unix(int64(expRaw), 0)); until > 0 {
			ttl = until
		}
	}
	return RedisClient.Set(context.Background(), "revoked:"+jti, "1", ttl).Err()
}

// GetUserID extracts the authenticated user id placed by the auth middleware.
func GetUserID(r *http.Request) (uint, bool) {
	v := r.Context().Value(UserIDKey)
	id, ok := v.(uint)
	return id, ok
}

// GetResidentID extracts the caller's resident id from the request context.
func GetResidentID(r *http.Request) (string, bool) {
	v := r.Context().Value(ResidentIDKey)
	id, ok := v.(string)
	return id, ok && id != ""
}
