package farcaster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Awarix/Farc-mini-app-auth/platform/config"
)

const bulkUsersPath = "/v2/farcaster/user/bulk"

// Client resolves profiles against the Neynar API. The API key is required at
// construction: verification must fail closed when the credential is missing,
// not silently skip enrichment.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Neynar API client.
func NewClient(cfg config.NeynarConfig) (*Client, error) {
	if cfg.GetNeynarAPIKey() == "" {
		return nil, errors.New("neynar API key not configured")
	}
	return &Client{
		baseURL: cfg.GetNeynarBaseURL(),
		apiKey:  cfg.GetNeynarAPIKey(),
		http:    &http.Client{Timeout: cfg.GetNeynarTimeout()},
	}, nil
}

type bulkUsersResponse struct {
	Users []struct {
		Fid               int64  `json:"fid"`
		Username          string `json:"username"`
		DisplayName       string `json:"display_name"`
		PfpURL            string `json:"pfp_url"`
		VerifiedAddresses struct {
			EthAddresses []string `json:"eth_addresses"`
		} `json:"verified_addresses"`
	} `json:"users"`
}

// ResolveProfile fetches the profile for a single fid.
func (c *Client) ResolveProfile(ctx context.Context, fid int64) (Profile, error) {
	url := fmt.Sprintf("%s%s?fids=%d", c.baseURL, bulkUsersPath, fid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Profile{}, ErrProfileNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: neynar returned %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var body bulkUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
	}

	if len(body.Users) == 0 {
		return Profile{}, ErrProfileNotFound
	}

	user := body.Users[0]
	profile := Profile{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		PfpURL:      user.PfpURL,
	}
	if len(user.VerifiedAddresses.EthAddresses) > 0 {
		addr := user.VerifiedAddresses.EthAddresses[0]
		profile.Address = &addr
	}
	return profile, nil
}

var _ ProfileResolver = (*Client)(nil)
