package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrNotFound reports a sensor or building the backend does not know.
var ErrNotFound = errors.New("resource not found")

// Client issues requests against the monitoring backend. It is stateless;
// mutable query parameters live in the refresh controller, not here.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the given backend base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListBuildings retrieves all buildings.
func (c *Client) ListBuildings(ctx context.Context) ([]Building, error) {
	var out []Building
	if err := c.getJSON(ctx, "/buildings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBuilding retrieves one building with its sensors.
func (c *Client) GetBuilding(ctx context.Context, id int) (*Building, error) {
	var out Building
	if err := c.getJSON(ctx, "/buildings/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSensors retrieves sensors, optionally filtered by building.
func (c *Client) ListSensors(ctx context.Context, buildingID *int) ([]Sensor, error) {
	params := url.Values{}
	if buildingID != nil {
		params.Set("building_id", strconv.Itoa(*buildingID))
	}
	var out []Sensor
	if err := c.getJSON(ctx, "/sensors", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSensor retrieves one sensor with its last known reading.
func (c *Client) GetSensor(ctx context.Context, id int) (*Sensor, error) {
	var out Sensor
	if err := c.getJSON(ctx, "/sensors/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadings retrieves a sensor's readings for the trailing window,
// ascending by timestamp.
func (c *Client) GetReadings(ctx context.Context, id, hours int) ([]Reading, error) {
	params := url.Values{}
	params.Set("hours", strconv.Itoa(hours))
	var out []Reading
	if err := c.getJSON(ctx, "/sensors/"+strconv.Itoa(id)+"/readings", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApproximation retrieves the fitted curve and trend for the trailing
// window. A nil degree omits the parameter and lets the backend choose.
func (c *Client) GetApproximation(ctx context.Context, id, hours int, degree *int) (*ApproximationResponse, error) {
	params := url.Values{}
	params.Set("hours", strconv.Itoa(hours))
	if degree != nil {
		params.Set("degree", strconv.Itoa(*degree))
	}
	var out ApproximationResponse
	if err := c.getJSON(ctx, "/sensors/"+strconv.Itoa(id)+"/approximation", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAlerts retrieves active alerts for the trailing window.
func (c *Client) ListAlerts(ctx context.Context, hours int) ([]Alert, error) {
	params := url.Values{}
	params.Set("hours", strconv.Itoa(hours))
	var out []Alert
	if err := c.getJSON(ctx, "/alerts", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", path, err)
	}
	return nil
}
