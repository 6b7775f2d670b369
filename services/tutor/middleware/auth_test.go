// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(secret string) *gin.Engine {
	router := gin.New()
	router.Use(AccessTokenAuth(secret))
	router.POST("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAccessTokenAuth(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setHeader  bool
		wantStatus int
	}{
		{"valid token", "s3cret", true, http.StatusOK},
		{"wrong token", "wrong", true, http.StatusUnauthorized},
		{"empty token", "", true, http.StatusUnauthorized},
		{"missing header", "", false, http.StatusUnauthorized},
	}

	router := testRouter("s3cret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.setHeader {
				req.Header.Set(AccessTokenHeader, tt.token)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t,
					`{"detail":"Invalid or missing access token"}`,
					w.Body.String())
			}
		})
	}
}
