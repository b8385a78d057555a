// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package models

import "time"

// APIResponse is the standard envelope for all API responses.
//
// Success:
//
//	{
//	  "status": "success",
//	  "data": { ... },
//	  "metadata": { "timestamp": "...", "query_time_ms": 12 }
//	}
//
// Error:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": { "timestamp": "..." },
//	  "error": { "code": "INVALID_COORDINATES", "message": "..." }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata common to all endpoints.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError describes a failed request in a machine-readable form.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
	ModelAge  string    `json:"model_age,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
