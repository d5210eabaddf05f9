// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/taibuivan/panelkit/internal/platform/constants"
)

// OriginPolicy is the part of the configuration CORS depends on.
type OriginPolicy interface {
	IsDevelopment() bool
	Origins() []string
}

// CORS answers cross-origin requests from the configured origins. In
// development every origin is accepted. Content-Disposition is exposed so
// browser clients can name export downloads.
func CORS(policy OriginPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if policy.IsDevelopment() || originAllowed(origin, policy.Origins()) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", strings.Join([]string{constants.HeaderXRequestID, constants.HeaderDisposition, "Retry-After"}, ", "))
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "600")
				header.Add("Vary", constants.HeaderOrigin)
			}

			if request.Method == http.MethodOptions && request.Header.Get("Access-Control-Request-Method") != "" {
				writer.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// originAllowed matches exact origins, and subdomains of an allowed https
// origin.
func originAllowed(origin string, allowed []string) bool {
	if slices.Contains(allowed, origin) {
		return true
	}
	for _, candidate := range allowed {
		host, ok := strings.CutPrefix(candidate, "https://")
		if ok && strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, "."+host) {
			return true
		}
	}
	return false
}
