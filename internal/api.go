package monitop

import (
	"context"
	"net/url"
	"strconv"
)

// Sample is one monitoring snapshot. Nil fields were absent or null in the payload.
type Sample struct {
	TS         *string  `json:"ts"`
	Files      *float64 `json:"files"`
	Chunks     *float64 `json:"chunks"`
	Candidates *float64 `json:"candidates"`
	Clones     *float64 `json:"clones"`
}

// ThroughputPoint is a single (N, tpu) observation
type ThroughputPoint struct {
	N   float64 `json:"N"`
	TPU float64 `json:"tpu"`
}

// FitStats holds the goodness of fit for one candidate model
type FitStats struct {
	R2 *float64 `json:"r2"`
}

// Trend is the short-window slope the backend computes alongside the fit
type Trend struct {
	SlopeLastK *float64 `json:"slope_last_k"`
}

// FitModel summarises the latest curve fit for a target
type FitModel struct {
	Preferred   *string   `json:"preferred"`
	NPoints     *int      `json:"n_points"`
	Linear      *FitStats `json:"linear"`
	Exponential *FitStats `json:"exponential"`
	Trend       *Trend    `json:"trend"`
}

// Status is the most recent status update published by the pipeline
type Status struct {
	Timestamp *string `json:"timestamp"`
	Message   *string `json:"message"`
}

type samplesResponse struct {
	Samples []Sample `json:"samples"`
}

type pointsResponse struct {
	Points []ThroughputPoint `json:"points"`
}

// Samples returns the last n samples in chronological order
func (c *Client) Samples(ctx context.Context, n int) ([]Sample, error) {
	var resp samplesResponse
	query := url.Values{"n": {strconv.Itoa(n)}}
	if err := c.getJSON(ctx, "/api/samples", query, &resp); err != nil {
		return nil, err
	}
	return resp.Samples, nil
}

// Status returns the latest pipeline status
func (c *Client) Status(ctx context.Context) (Status, error) {
	var resp Status
	if err := c.getJSON(ctx, "/api/status", nil, &resp); err != nil {
		return Status{}, err
	}
	return resp, nil
}

// Throughput returns up to n throughput points for target
func (c *Client) Throughput(ctx context.Context, target string, n int) ([]ThroughputPoint, error) {
	var resp pointsResponse
	query := url.Values{
		"target": {target},
		"n":      {strconv.Itoa(n)},
	}
	if err := c.getJSON(ctx, "/api/tpu", query, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

// Model returns the latest fit model for target
func (c *Client) Model(ctx context.Context, target string) (FitModel, error) {
	var resp FitModel
	query := url.Values{"target": {target}}
	if err := c.getJSON(ctx, "/api/model", query, &resp); err != nil {
		return FitModel{}, err
	}
	return resp, nil
}
