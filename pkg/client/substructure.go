package client

import (
	"context"

	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

const apiPrefix = "/api/v1/substructure"

// Match reports how the query embeds in the target.
func (c *Client) Match(ctx context.Context, req *mtypes.MatchRequestDTO) (*mtypes.MatchResultDTO, error) {
	var res mtypes.MatchResultDTO
	if err := c.post(ctx, apiPrefix+"/match", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Screen runs the query against every molecule of a library.
func (c *Client) Screen(ctx context.Context, req *mtypes.ScreenRequestDTO) (*mtypes.ScreenResultDTO, error) {
	var res mtypes.ScreenResultDTO
	if err := c.post(ctx, apiPrefix+"/screen", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Anchors lists the target atoms that can host query atom 0.
func (c *Client) Anchors(ctx context.Context, req *mtypes.AnchorRequestDTO) (*mtypes.AnchorResultDTO, error) {
	var res mtypes.AnchorResultDTO
	if err := c.post(ctx, apiPrefix+"/anchors", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Liveness is the body of GET /healthz.
type Liveness struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health calls the liveness check.
func (c *Client) Health(ctx context.Context) (*Liveness, error) {
	var res Liveness
	if err := c.get(ctx, "/healthz", &res); err != nil {
		return nil, err
	}
	return &res, nil
}
