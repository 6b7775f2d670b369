// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the tutor service.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// AccessTokenHeader is the header carrying the shared secret.
const AccessTokenHeader = "access_token"

// unauthorizedDetail is the fixed 401 body. It does not distinguish a
// missing token from a wrong one.
const unauthorizedDetail = "Invalid or missing access token"

// AccessTokenAuth creates a middleware that authenticates requests with a
// static shared secret.
//
// # Description
//
// The bot front end is the only expected client; it sends the secret in
// the access_token header on every request. The comparison is constant
// time. Health and metrics routes are registered outside this middleware.
//
// # Inputs
//
//   - secret: The shared secret. Must not be empty.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware aborting unauthenticated requests
//     with 401 and a fixed detail body.
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func AccessTokenAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AccessTokenHeader)

		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, datatypes.ErrorDetail{
				Detail: unauthorizedDetail,
			})
			return
		}

		c.Next()
	}
}
