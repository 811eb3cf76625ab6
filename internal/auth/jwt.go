// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package auth resolves the acting user for API requests.

Tokens are JWTs signed upstream with HMAC-SHA256; the user ID is the
standard sub claim. Authentication here is deliberately soft: an
invalid, expired or absent token degrades the request to anonymous
rather than rejecting it, because every read path has a defined
anonymous behavior. Handlers that require a user check for an empty ID
themselves.
*/
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates upstream-issued JWTs.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given shared secret. An empty
// secret yields a verifier that rejects every token, which degrades
// all requests to anonymous.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// UserIDFromToken validates a token string and returns its subject.
func (v *Verifier) UserIDFromToken(tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("token verification disabled")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// ResolveUserID determines the acting user for a request. An explicit
// body userId wins over the Authorization header, matching how the
// web client batches requests on behalf of a signed-in user. Returns
// empty string for anonymous.
func (v *Verifier) ResolveUserID(r *http.Request, bodyUserID string) string {
	if bodyUserID != "" {
		return bodyUserID
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return ""
	}

	userID, err := v.UserIDFromToken(token)
	if err != nil {
		return ""
	}
	return userID
}
