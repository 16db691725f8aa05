package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/worldmesh/internal/api"
	"github.com/dreamware/worldmesh/internal/cluster"
	"github.com/dreamware/worldmesh/internal/coordinator"
	"github.com/dreamware/worldmesh/internal/event"
	"github.com/dreamware/worldmesh/internal/geom"
	"github.com/dreamware/worldmesh/internal/shard"
)

type server struct {
	coord     *coordinator.Coordinator
	validator *event.PayloadValidator
	hub       *streamHub
	log       *zap.SugaredLogger
}

func newServer(coord *coordinator.Coordinator, validator *event.PayloadValidator, log *zap.SugaredLogger) *server {
	s := &server{
		coord:     coord,
		validator: validator,
		hub:       newStreamHub(log),
		log:       log,
	}
	registerTopologyGauges(coord)
	return s
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.handleSubmitEvent)
	mux.HandleFunc("GET /events/stream", s.handleEventStream)
	mux.HandleFunc("GET /topology", s.handleTopology)
	mux.HandleFunc("POST /clusters", s.handleCreateCluster)
	mux.HandleFunc("DELETE /clusters/{id}", s.handleDeleteCluster)
	mux.HandleFunc("POST /clusters/{id}/shards", s.handleCreateShard)
	mux.HandleFunc("DELETE /shards/{id}", s.handleDeleteShard)
	mux.HandleFunc("POST /entities", s.handlePlaceEntity)
	mux.HandleFunc("DELETE /entities/{id}", s.handleEvictEntity)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// handleSubmitEvent validates and propagates one world event, reporting
// whether it overflowed anywhere in the topology.
func (s *server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req api.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	e, err := event.New(req.ID, req.Type, req.Position, req.Radius, req.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validator.Validate(e); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := time.Now()
	overflow := s.coord.PropagateEvent(e)
	observePropagation(e.Type, overflow, time.Since(start))

	s.hub.Broadcast(api.StreamFrame{
		EventID:  e.ID,
		Type:     e.Type,
		Position: e.Position,
		Radius:   e.Radius,
		Overflow: overflow,
		Time:     time.Now().UTC(),
	})

	s.log.Debugw("event propagated", "event", e.ID, "type", e.Type, "overflow", overflow)
	writeJSON(w, http.StatusOK, api.EventResponse{EventID: e.ID, Overflow: overflow})
}

// handleTopology returns a stable snapshot of the whole hierarchy.
func (s *server) handleTopology(w http.ResponseWriter, r *http.Request) {
	clusters := make([]api.ClusterInfo, 0, s.coord.Count())
	for _, ci := range s.coord.Topology() {
		clusters = append(clusters, api.ClusterInfo{ID: ci.ID, Region: ci.Region, Shards: ci.Shards})
	}
	slices.SortFunc(clusters, func(a, b api.ClusterInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	for i := range clusters {
		slices.SortFunc(clusters[i].Shards, func(a, b shard.Info) int {
			return strings.Compare(a.ID, b.ID)
		})
	}
	writeJSON(w, http.StatusOK, api.TopologyResponse{
		CoordinatorID: s.coord.ID,
		Clusters:      clusters,
	})
}

func (s *server) handleCreateCluster(w http.ResponseWriter, r *http.Request) {
	var req api.CreateClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	region, err := geom.NewRegion(req.Min, req.Max)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := cluster.New(req.ID, region)
	replaced := s.coord.AddCluster(c)
	s.log.Infow("cluster registered", "cluster", c.ID, "region", region.String(), "replaced", replaced)
	writeJSON(w, http.StatusCreated, api.CreateResponse{ID: c.ID, Replaced: replaced})
}

func (s *server) handleDeleteCluster(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.coord.RemoveCluster(id) {
		writeError(w, http.StatusNotFound, "unknown cluster: "+id)
		return
	}
	s.log.Infow("cluster removed", "cluster", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCreateShard(w http.ResponseWriter, r *http.Request) {
	clusterID := r.PathValue("id")

	var req api.CreateShardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	region, err := geom.NewRegion(req.Min, req.Max)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sh := shard.New(req.ID, region)
	if err := s.coord.PlaceShard(clusterID, sh); err != nil {
		if errors.Is(err, coordinator.ErrUnknownCluster) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.log.Infow("shard placed", "shard", sh.ID, "cluster", clusterID, "region", region.String())
	writeJSON(w, http.StatusCreated, api.CreateResponse{ID: sh.ID})
}

func (s *server) handleDeleteShard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.coord.DropShard(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Infow("shard dropped", "shard", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handlePlaceEntity(w http.ResponseWriter, r *http.Request) {
	var req api.PlaceEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "entity_id required")
		return
	}

	if err := s.coord.PlaceEntity(req.EntityID, req.Kind, req.ShardID); err != nil {
		switch {
		case errors.Is(err, coordinator.ErrUnknownShard):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, shard.ErrUnknownKind):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateResponse{ID: req.EntityID})
}

func (s *server) handleEvictEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.coord.EvictEntity(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
