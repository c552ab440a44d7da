package restapi

import (
	"context"
	"fmt"
	"net/http"
)

// rewriteRequest is the AI endpoint's request body.
type rewriteRequest struct {
	CurrentCode string `json:"current_code"`
	UserRequest string `json:"user_request"`
}

// rewriteResponse is the AI endpoint's response body.
type rewriteResponse struct {
	UpdatedCode string `json:"updated_code"`
}

// Rewrite asks the AI endpoint to rewrite the diagram definition according
// to a natural-language instruction. A payload missing the rewritten text
// is treated as a failure so the caller's local text stays untouched.
func (c *Client) Rewrite(ctx context.Context, currentCode, userRequest string) (string, error) {
	var result rewriteResponse
	body := rewriteRequest{CurrentCode: currentCode, UserRequest: userRequest}
	if err := c.do(ctx, "rewrite diagram", http.MethodPost, "/api/update-diagram", body, &result); err != nil {
		return "", err
	}
	if result.UpdatedCode == "" {
		return "", fmt.Errorf("rewrite diagram: malformed response, no updated code")
	}
	return result.UpdatedCode, nil
}

// IsAvailable reports whether the assist backend is reachable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.Healthy(ctx)
}
