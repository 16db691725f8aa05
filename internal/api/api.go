// Package api defines the wire types shared by the coordinator server and
// its clients, plus small JSON helpers for talking to it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dreamware/worldmesh/internal/geom"
	"github.com/dreamware/worldmesh/internal/shard"
)

// EventRequest submits a world event for propagation.
type EventRequest struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	Position geom.Vec3       `json:"position"`
	Radius   float64         `json:"radius"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// EventResponse reports the outcome of a propagated event.
type EventResponse struct {
	EventID  string `json:"event_id"`
	Overflow bool   `json:"overflow"`
}

// CreateClusterRequest registers a cluster covering the given region.
type CreateClusterRequest struct {
	ID  string    `json:"id,omitempty"`
	Min geom.Vec3 `json:"min"`
	Max geom.Vec3 `json:"max"`
}

// CreateShardRequest places a shard into the cluster named in the URL.
type CreateShardRequest struct {
	ID  string    `json:"id,omitempty"`
	Min geom.Vec3 `json:"min"`
	Max geom.Vec3 `json:"max"`
}

// CreateResponse echoes the identifier assigned to a created resource.
type CreateResponse struct {
	ID       string `json:"id"`
	Replaced bool   `json:"replaced,omitempty"`
}

// PlaceEntityRequest places or moves an entity onto a shard.
type PlaceEntityRequest struct {
	EntityID string           `json:"entity_id"`
	Kind     shard.EntityKind `json:"kind"`
	ShardID  string           `json:"shard_id"`
}

// TopologyResponse is the full topology snapshot returned by the server.
type TopologyResponse struct {
	CoordinatorID string        `json:"coordinator_id"`
	Clusters      []ClusterInfo `json:"clusters"`
}

// ClusterInfo describes one cluster within a topology snapshot.
type ClusterInfo struct {
	ID     string       `json:"id"`
	Region string       `json:"region"`
	Shards []shard.Info `json:"shards"`
}

// StreamFrame is one entry on the websocket event stream.
type StreamFrame struct {
	EventID  string    `json:"event_id"`
	Type     string    `json:"type"`
	Position geom.Vec3 `json:"position"`
	Radius   float64   `json:"radius"`
	Overflow bool      `json:"overflow"`
	Time     time.Time `json:"time"`
}

// ErrorResponse carries a human-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON marshals body, POSTs it to url, and decodes the response into
// out when out is non-nil. Non-2xx statuses are returned as errors.
func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON GETs url and decodes the response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Delete issues a DELETE to url, discarding any response body.
func Delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	return nil
}
