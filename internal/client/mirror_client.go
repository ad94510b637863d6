package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tracking-service/internal/config"
	"tracking-service/internal/model"
)

type mirrorPosition struct {
	VehicleID  string    `json:"vehicle_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
	RouteID    string    `json:"route_id,omitempty"`
}

// MirrorClient pushes accepted position samples to the realtime mirror
// service. It implements service.LocationNotifier.
type MirrorClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewMirrorClient(cfg *config.Config) *MirrorClient {
	return &MirrorClient{
		baseURL:       cfg.ExternalServices.MirrorServiceURL,
		internalToken: cfg.ExternalServices.MirrorInternalToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *MirrorClient) NotifyPosition(ctx context.Context, vehicle model.Vehicle, position model.Position) error {
	if c.baseURL == "" {
		return fmt.Errorf("mirror service URL is not configured")
	}

	payload := mirrorPosition{
		VehicleID:  vehicle.VehicleID,
		Latitude:   position.Latitude,
		Longitude:  position.Longitude,
		Speed:      position.Speed,
		Heading:    position.Heading,
		RecordedAt: position.RecordedAt,
		RouteID:    vehicle.RouteID.String(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode position: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/fleet/positions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.internalToken != "" {
		req.Header.Set("X-Internal-Token", c.internalToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mirror service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
