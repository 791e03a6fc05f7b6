package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CitizenClient queries the civil registry for a person's name by national ID.
// Used to prefill customer records at the register.
type CitizenClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCitizenClient(baseURL string) *CitizenClient {
	return &CitizenClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CitizenClient) LookupByNationalID(ctx context.Context, nationalID string) (string, error) {
	endpoint := fmt.Sprintf("%s/citizens/%s", c.baseURL, url.PathEscape(nationalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("citizen: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("citizen: registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("citizen: national id %s not found", nationalID)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("citizen: registry returned %d", resp.StatusCode)
	}

	var payload struct {
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("citizen: decode response: %w", err)
	}
	return payload.FullName, nil
}
