package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// VetDirectory supplies vet availability from the external clinic roster.
type VetDirectory interface {
	// AvailableVetIDs returns the IDs of vets currently accepting cases.
	AvailableVetIDs(ctx context.Context) ([]string, error)
	// Exists reports whether the vet ID is known to the roster.
	Exists(ctx context.Context, vetID string) (bool, error)
}

// HTTPVetDirectory implements VetDirectory against the clinic roster service.
type HTTPVetDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPVetDirectory creates a new HTTP vet directory client.
func NewHTTPVetDirectory(baseURL string) *HTTPVetDirectory {
	return &HTTPVetDirectory{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AvailableVetIDs fetches the IDs of vets currently marked available.
func (d *HTTPVetDirectory) AvailableVetIDs(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/api/v1/vets?available=true", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available vets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body struct {
		Vets []struct {
			ID string `json:"id"`
		} `json:"vets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	ids := make([]string, 0, len(body.Vets))
	for _, v := range body.Vets {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

// Exists checks the roster for the vet ID.
func (d *HTTPVetDirectory) Exists(ctx context.Context, vetID string) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/vets/%s", d.baseURL, vetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to fetch vet: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// StaticVetDirectory implements VetDirectory over a fixed roster. It backs
// single-clinic deployments without a roster service, and tests.
type StaticVetDirectory struct {
	order []string
	ids   map[string]struct{}
}

// NewStaticVetDirectory creates a directory where every listed vet is
// permanently available, in the given order.
func NewStaticVetDirectory(vetIDs ...string) *StaticVetDirectory {
	ids := make(map[string]struct{}, len(vetIDs))
	for _, id := range vetIDs {
		ids[id] = struct{}{}
	}
	return &StaticVetDirectory{order: vetIDs, ids: ids}
}

// AvailableVetIDs returns all configured vet IDs in roster order.
func (d *StaticVetDirectory) AvailableVetIDs(_ context.Context) ([]string, error) {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out, nil
}

// Exists reports whether the vet ID was configured.
func (d *StaticVetDirectory) Exists(_ context.Context, vetID string) (bool, error) {
	_, ok := d.ids[vetID]
	return ok, nil
}
