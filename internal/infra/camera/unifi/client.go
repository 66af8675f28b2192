package unifi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

const integrationPath = "/proxy/protect/integration/v1"

// Client talks to the integration API of a UniFi Protect controller.
type Client struct {
	baseURL    string
	apiKey     string
	cameraID   string
	httpClient *http.Client
}

// NewClient constructs a Protect client. The camera id may stay empty while
// the client is only used for discovery; Snapshot requires it.
func NewClient(host, apiKey, cameraID string, timeout time.Duration, verifyTLS bool) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("unifi host cannot be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("unifi api key cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !verifyTLS {
		// Local controllers ship self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:  baseURLFor(host),
		apiKey:   apiKey,
		cameraID: strings.TrimSpace(cameraID),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// Snapshot fetches one current frame from the configured camera.
func (c *Client) Snapshot(ctx context.Context) (monitor.Snapshot, error) {
	if c.cameraID == "" {
		return monitor.Snapshot{}, errors.New("camera id not configured")
	}

	endpoint := fmt.Sprintf("%s%s/cameras/%s/snapshot", c.baseURL, integrationPath, c.cameraID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return monitor.Snapshot{}, fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return monitor.Snapshot{}, apperrors.Wrap("camera_unreachable", "camera request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		cause := fmt.Errorf("snapshot request error: status=%d body=%s", resp.StatusCode, string(payload))
		return monitor.Snapshot{}, apperrors.Wrap(codeForStatus(resp.StatusCode), "controller rejected snapshot request", cause)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return monitor.Snapshot{}, apperrors.Wrap("camera_unreachable", "read snapshot response", err)
	}
	if len(data) == 0 {
		return monitor.Snapshot{}, apperrors.Wrap("camera_malformed", "controller returned an empty snapshot", nil)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		cause := fmt.Errorf("unexpected content type %s", contentType)
		return monitor.Snapshot{}, apperrors.Wrap("camera_malformed", "snapshot payload is not an image", cause)
	}

	return monitor.Snapshot{Data: data, ContentType: contentType}, nil
}

// ListCameras returns every camera the controller knows about.
func (c *Client) ListCameras(ctx context.Context) ([]monitor.CameraInfo, error) {
	endpoint := c.baseURL + integrationPath + "/cameras"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build camera list request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap("camera_unreachable", "camera list request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		cause := fmt.Errorf("camera list error: status=%d body=%s", resp.StatusCode, string(payload))
		return nil, apperrors.Wrap(codeForStatus(resp.StatusCode), "controller rejected camera list request", cause)
	}

	var records []cameraRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, apperrors.Wrap("camera_malformed", "decode camera list response", err)
	}

	cameras := make([]monitor.CameraInfo, 0, len(records))
	for _, rec := range records {
		cameras = append(cameras, monitor.CameraInfo{
			ID:    rec.ID,
			Name:  rec.Name,
			Model: rec.Model,
			State: rec.State,
			MAC:   rec.MAC,
		})
	}
	return cameras, nil
}

type cameraRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
	State string `json:"state"`
	MAC   string `json:"mac"`
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "camera_unauthorized"
	case http.StatusNotFound:
		return "camera_not_found"
	default:
		return "camera_malformed"
	}
}

// baseURLFor keeps bare hosts on https, the only scheme Protect speaks in
// production, while letting tests point at a plain http listener.
func baseURLFor(host string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(host), "/")
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + trimmed
}

var (
	_ monitor.SnapshotSource  = (*Client)(nil)
	_ monitor.CameraDirectory = (*Client)(nil)
)
