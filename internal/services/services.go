// Package services exposes one method per remote API endpoint with typed
// results. Services are cheap values built per request around the
// request-scoped API client.
package services

import (
	"context"
	"net/url"
)

// API is the subset of *apiclient.Client the services need.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
}

// Set bundles the resource services for one API client.
type Set struct {
	Bills      *BillService
	Auth       *AuthService
	Statistics *StatisticsService
}

// New returns every resource service bound to api.
func New(api API) *Set {
	return &Set{
		Bills:      NewBillService(api),
		Auth:       NewAuthService(api),
		Statistics: NewStatisticsService(api),
	}
}
