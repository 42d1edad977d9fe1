// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// # Analytics Types

// AnalysisStats is the dashboard's headline figures.
type AnalysisStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	OrderVolume    int     `json:"orderVolume"`
	ActiveUsers    int     `json:"activeUsers"`
	ConversionRate float64 `json:"conversionRate"`
}

// RevenuePoint is one day on the revenue chart.
type RevenuePoint struct {
	Date          string  `json:"_id"` // "YYYY-MM-DD"
	Sales         float64 `json:"sales"`
	Cancellations float64 `json:"cancellations"`
}

// NamedValue is a generic label/value pair used by the status and category charts.
type NamedValue struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Revenue float64 `json:"revenue,omitempty"`
}

// Analysis is the aggregated dashboard payload.
type Analysis struct {
	Stats               AnalysisStats  `json:"stats"`
	RevenueGraph        []RevenuePoint `json:"revenueGraph"`
	OrderStatus         []NamedValue   `json:"orderStatus"`
	CategoryPerformance []NamedValue   `json:"categoryPerformance"`
}

// # User Administration

/*
ListUsers fetches every registered account (admin).

GET /user
*/
func (client *Client) ListUsers(context context.Context) ([]User, error) {

	var envelope struct {
		Users []User `json:"users"`
	}

	if err := client.CallJSON(context, http.MethodGet, "/user", nil, &envelope); err != nil {
		return nil, err
	}

	return envelope.Users, nil
}

/*
UpdateUser patches account fields (admin: role, wallet balance, verification).

PATCH /user/:id
*/
func (client *Client) UpdateUser(context context.Context, userID string, fields map[string]any) (*User, error) {

	var envelope struct {
		User *User `json:"user"`
	}

	if err := client.CallJSON(context, http.MethodPatch, "/user/"+userID, &RequestOptions{JSON: fields}, &envelope); err != nil {
		return nil, err
	}

	return envelope.User, nil
}

/*
DeleteUser removes an account (admin).

DELETE /user/:id
*/
func (client *Client) DeleteUser(context context.Context, userID string) error {
	return client.CallJSON(context, http.MethodDelete, "/user/"+userID, nil, nil)
}

/*
DashboardAnalysis fetches aggregated store statistics for the admin dashboard.

Description: GET /user/analysis?from&to. Zero time values omit the bound,
letting the backend apply its default window.
*/
func (client *Client) DashboardAnalysis(context context.Context, from, to time.Time) (*Analysis, error) {

	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("to", to.UTC().Format(time.RFC3339))
	}

	var analysis Analysis
	if err := client.CallJSON(context, http.MethodGet, "/user/analysis", &RequestOptions{Query: query}, &analysis); err != nil {
		return nil, err
	}

	return &analysis, nil
}
