// Package osrm implements the road-routing provider contract against an
// OSRM HTTP server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tripmate/internal/modules/routing"
	"tripmate/internal/types"
)

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Name     string  `json:"name"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route queries /route/v1/{profile} across the ordered waypoints. A provider
// error or an empty answer yields an empty candidate list, not an error the
// caller must branch on separately.
func (c *Client) Route(ctx context.Context, profile string, waypoints []types.Point, opts routing.RouteOptions) ([]routing.Candidate, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("osrm: need at least two waypoints, got %d", len(waypoints))
	}

	coords := make([]string, len(waypoints))
	for i, w := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", w.Lng, w.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson",
		c.endpoint, profile, strings.Join(coords, ";"))
	if opts.Alternatives > 1 {
		url += fmt.Sprintf("&alternatives=%d", opts.Alternatives)
	}
	if opts.Steps {
		url += "&steps=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	var out osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("osrm decode: %w", err)
	}
	if out.Code != "Ok" {
		return nil, nil
	}

	cands := make([]routing.Candidate, 0, len(out.Routes))
	for _, r := range out.Routes {
		cand := routing.Candidate{
			DistanceMeters: r.Distance,
			DurationSec:    r.Duration,
		}
		for _, pair := range r.Geometry.Coordinates {
			if len(pair) < 2 {
				continue
			}
			// GeoJSON order is lng,lat.
			cand.Geometry = append(cand.Geometry, types.Point{Lat: pair[1], Lng: pair[0]})
		}
		for _, leg := range r.Legs {
			for _, s := range leg.Steps {
				instr := s.Maneuver.Type
				if s.Maneuver.Modifier != "" {
					instr += " " + s.Maneuver.Modifier
				}
				if s.Name != "" {
					instr += " onto " + s.Name
				}
				cand.Steps = append(cand.Steps, routing.Step{
					Instruction:    instr,
					DistanceMeters: s.Distance,
					DurationSec:    s.Duration,
				})
			}
		}
		cands = append(cands, cand)
	}
	return cands, nil
}
