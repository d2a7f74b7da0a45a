package client

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
)

const profilePath = "/business/profile"

// GetProfile fetches the signed-in user's business profile. A user without
// a profile gets a KindTransient error with status 404.
func (c *Client) GetProfile(ctx context.Context) (types.BusinessProfile, error) {
	call := Call{Method: http.MethodGet, Path: profilePath, AuthRequired: true}
	var profile types.BusinessProfile
	resp, err := c.Request(ctx, call)
	if err != nil {
		return profile, err
	}
	err = decode(resp, call.Op(), &profile, "business_name")
	return profile, err
}

// SaveProfile creates or replaces the business profile.
func (c *Client) SaveProfile(ctx context.Context, profile types.BusinessProfile) (types.BusinessProfile, error) {
	call := Call{Method: http.MethodPost, Path: profilePath, Body: profile, AuthRequired: true}
	var saved types.BusinessProfile
	resp, err := c.Request(ctx, call)
	if err != nil {
		return saved, err
	}
	err = decode(resp, call.Op(), &saved, "business_name")
	return saved, err
}
