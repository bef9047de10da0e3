package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-falcon/internal/activity/dto"
)

// Client polls campwatch's own HTTP API for the live snapshot, since the TUI
// runs as a separate process from cmd/campwatch and has no in-process
// access to the engine's Registry.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchSnapshot retrieves the current crew list from GET {basePath}/snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (dto.SnapshotResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activity/snapshot", nil)
	if err != nil {
		return dto.SnapshotResponse{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return dto.SnapshotResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dto.SnapshotResponse{}, fmt.Errorf("snapshot request failed: %s", resp.Status)
	}

	var out dto.SnapshotOutput
	if err := json.NewDecoder(resp.Body).Decode(&out.Body); err != nil {
		return dto.SnapshotResponse{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return out.Body, nil
}
