package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Medications(ctx context.Context) ([]Medication, error) {
	var out envelope[[]Medication]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/medications", authed: true}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Medication{}
	}
	return out.Data, nil
}

func (c *Client) AddMedication(ctx context.Context, in MedicationInput) (*Medication, error) {
	var out envelope[*Medication]
	if err := c.do(ctx, call{method: http.MethodPost, path: "/medications", body: in, authed: true}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Medication(ctx context.Context, id string) (*Medication, error) {
	var out envelope[*Medication]
	if err := c.do(ctx, call{method: http.MethodGet, path: medicationPath(id), authed: true}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) UpdateMedication(ctx context.Context, id string, in MedicationInput) (*Medication, error) {
	var out envelope[*Medication]
	if err := c.do(ctx, call{method: http.MethodPut, path: medicationPath(id), body: in, authed: true}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeleteMedication(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: medicationPath(id), authed: true}, nil)
}

func (c *Client) Metrics(ctx context.Context) ([]HealthMetric, error) {
	var out envelope[[]HealthMetric]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/metrics", authed: true}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []HealthMetric{}
	}
	return out.Data, nil
}

func (c *Client) AddMetric(ctx context.Context, m NewMetric) (*HealthMetric, error) {
	var out envelope[*HealthMetric]
	if err := c.do(ctx, call{method: http.MethodPost, path: "/metrics", body: m.payload(), authed: true}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// MetricHistory fetches the per-type history and checks every reading
// against the schema: a parsable date and a value or a systolic.
func (c *Client) MetricHistory(ctx context.Context) (MetricHistory, error) {
	var out envelope[json.RawMessage]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/metrics/history", authed: true}, &out); err != nil {
		return nil, err
	}
	return parseHistory(out.Data)
}

func parseHistory(data json.RawMessage) (MetricHistory, error) {
	var raw map[MetricType][]json.RawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
		}
	}

	history := make(MetricHistory, len(raw))
	for typ, entries := range raw {
		readings := make([]Reading, 0, len(entries))
		for i, entry := range entries {
			var r struct {
				Date      *time.Time `json:"date"`
				Value     *float64   `json:"value"`
				Systolic  *int       `json:"systolic"`
				Diastolic *int       `json:"diastolic"`
				Unit      string     `json:"unit"`
			}
			if err := json.Unmarshal(entry, &r); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedHistory, typ, i, err)
			}
			if r.Date == nil {
				return nil, fmt.Errorf("%w: %s[%d]: missing date", ErrMalformedHistory, typ, i)
			}
			if r.Value == nil && r.Systolic == nil {
				return nil, fmt.Errorf("%w: %s[%d]: neither value nor systolic", ErrMalformedHistory, typ, i)
			}
			readings = append(readings, Reading{
				Date:      *r.Date,
				Value:     r.Value,
				Systolic:  r.Systolic,
				Diastolic: r.Diastolic,
				Unit:      r.Unit,
			})
		}
		history[typ] = readings
	}
	return history, nil
}

func medicationPath(id string) string {
	return "/medications/" + url.PathEscape(id)
}
