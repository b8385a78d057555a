// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/placewise/placewise/internal/logging"
)

// contextKey is a private type for request context values.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	accountIDKey contextKey = "account_id"
)

// RequestID assigns each request a UUID (or propagates an incoming
// X-Request-ID) and echoes it on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID from the context, or empty string.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Identity extracts the caller's account ID from a bearer token issued by the
// external auth service and stores it in the request context.
//
// This middleware never rejects a request: a missing, malformed, or expired
// token simply leaves the request anonymous and recommendations degrade to
// the top-rated ranking. Full authentication and authorization live in the
// auth service, not here.
func Identity(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := 0
			if len(secret) > 0 {
				accountID = accountIDFromHeader(r.Header.Get("Authorization"), secret)
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccountID returns the authenticated account ID from the context, or 0
// for anonymous requests.
func GetAccountID(ctx context.Context) int {
	if id, ok := ctx.Value(accountIDKey).(int); ok {
		return id
	}
	return 0
}

// accountIDFromHeader parses the bearer token and extracts the account_id
// claim. Returns 0 on any failure.
func accountIDFromHeader(header string, secret []byte) int {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return 0
	}
	tokenStr := strings.TrimSpace(header[len(prefix):])
	if tokenStr == "" {
		return 0
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		logging.Debug().Err(err).Msg("Bearer token rejected, treating request as anonymous")
		return 0
	}

	return accountIDClaim(claims)
}

// accountIDClaim reads the account_id claim, tolerating the numeric and
// string encodings different token issuers produce.
func accountIDClaim(claims jwt.MapClaims) int {
	switch v := claims["account_id"].(type) {
	case float64:
		return int(v)
	case string:
		if id, err := strconv.Atoi(v); err == nil {
			return id
		}
	}
	return 0
}
