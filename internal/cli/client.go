package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// Client talks to the triage service HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.client.Do(req)
}

func (c *Client) do(method, path string, body, out interface{}, okStatus int) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != okStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s", method, path, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateCase registers a new case and returns it.
func (c *Client) CreateCase(req *models.IntakeRequest) (*models.Case, error) {
	var created models.Case
	if err := c.do("POST", "/api/v1/cases", req, &created, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetCase fetches a case by ID.
func (c *Client) GetCase(id string) (*models.Case, error) {
	var got models.Case
	if err := c.do("GET", "/api/v1/cases/"+id, nil, &got, http.StatusOK); err != nil {
		return nil, err
	}
	return &got, nil
}

// TransitionCase moves a case to a new status.
func (c *Client) TransitionCase(id string, status models.CaseStatus) (*models.Case, error) {
	var got models.Case
	path := fmt.Sprintf("/api/v1/cases/%s/transition", id)
	if err := c.do("POST", path, &models.TransitionRequest{Status: status}, &got, http.StatusOK); err != nil {
		return nil, err
	}
	return &got, nil
}

// AssignCase assigns a waiting case to a vet.
func (c *Client) AssignCase(id, vetID string) (*models.Case, error) {
	var got models.Case
	path := fmt.Sprintf("/api/v1/cases/%s/assign", id)
	if err := c.do("POST", path, &models.AssignRequest{VetID: vetID}, &got, http.StatusOK); err != nil {
		return nil, err
	}
	return &got, nil
}

// CancelCase cancels a case.
func (c *Client) CancelCase(id string) (*models.Case, error) {
	var got models.Case
	path := fmt.Sprintf("/api/v1/cases/%s/cancel", id)
	if err := c.do("POST", path, nil, &got, http.StatusOK); err != nil {
		return nil, err
	}
	return &got, nil
}

// EstimateCase fetches the wait estimate for a waiting case.
func (c *Client) EstimateCase(id string) (*models.EstimateResponse, error) {
	var est models.EstimateResponse
	path := fmt.Sprintf("/api/v1/cases/%s/estimate", id)
	if err := c.do("GET", path, nil, &est, http.StatusOK); err != nil {
		return nil, err
	}
	return &est, nil
}

// Queue fetches the current queue snapshot.
func (c *Client) Queue() (*models.QueueSnapshot, error) {
	var snap models.QueueSnapshot
	if err := c.do("GET", "/api/v1/queue", nil, &snap, http.StatusOK); err != nil {
		return nil, err
	}
	return &snap, nil
}

// AutoAssign pairs waiting cases with available vets.
func (c *Client) AutoAssign() ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := c.do("POST", "/api/v1/queue/autoassign", nil, &assignments, http.StatusOK); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListAlerts fetches all open alert instances.
func (c *Client) ListAlerts() ([]*models.AlertInstance, error) {
	var instances []*models.AlertInstance
	if err := c.do("GET", "/api/v1/alerts", nil, &instances, http.StatusOK); err != nil {
		return nil, err
	}
	return instances, nil
}

// AcknowledgeAlert acknowledges an alert instance.
func (c *Client) AcknowledgeAlert(id, by string) (*models.AlertInstance, error) {
	var inst models.AlertInstance
	path := fmt.Sprintf("/api/v1/alerts/%s/ack", id)
	if err := c.do("POST", path, &models.AcknowledgeRequest{By: by}, &inst, http.StatusOK); err != nil {
		return nil, err
	}
	return &inst, nil
}

// ResolveAlert resolves an alert instance.
func (c *Client) ResolveAlert(id string) (*models.AlertInstance, error) {
	var inst models.AlertInstance
	path := fmt.Sprintf("/api/v1/alerts/%s/resolve", id)
	if err := c.do("POST", path, nil, &inst, http.StatusOK); err != nil {
		return nil, err
	}
	return &inst, nil
}
