package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/TheCowboyAI/cim-keys-sub002/internal/auth"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/config"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/orchestrator"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/bootstrap"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga"
	sagabootstrap "github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/bootstrap"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/certprovisioning"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/onboarding"
)

// Server holds the HTTP server dependencies: it exposes spec.md §6's
// inbound command API (start_bootstrap_saga, advance_saga, query_graph,
// query_saga) as JSON-over-HTTP, backed by an internal/orchestrator.Engine.
type Server struct {
	Router  *chi.Mux
	Logger  *slog.Logger
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Metrics *prometheus.Registry

	engine    *orchestrator.Engine
	startedAt time.Time
}

// NewServer creates an HTTP server with middleware, health/metrics
// endpoints, and the command API mounted under /api/v1.
func NewServer(cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry, apikeyAuth *auth.APIKeyAuthenticator, engine *orchestrator.Engine) *Server {
	rateLimiter := auth.NewRateLimiter(rdb, cfg.AuthRateLimitMaxAttempts, cfg.AuthRateLimitWindow)

	s := &Server{
		Router:    chi.NewRouter(),
		Logger:    logger,
		DB:        db,
		Redis:     rdb,
		Metrics:   metricsReg,
		engine:    engine,
		startedAt: time.Now(),
	}

	s.Router.Use(RequestID)
	s.Router.Use(Logger(logger))
	s.Router.Use(Metrics)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.Router.Get("/healthz", s.handleHealthz)
	s.Router.Get("/readyz", s.handleReadyz)
	s.Router.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(apikeyAuth, rateLimiter, logger))
		r.Use(auth.RequireAuth)

		r.With(auth.RequireOperator).Post("/sagas/bootstrap", s.handleStartBootstrapSaga)
		r.With(auth.RequireOperator).Post("/sagas/{sagaID}/advance", s.handleAdvanceSaga)
		r.Get("/sagas/{sagaID}", s.handleQuerySaga)
		r.With(auth.RequireOperator).Post("/sagas/onboarding", s.handleStartOnboardingSaga)
		r.Get("/sagas/onboarding/{sagaID}", s.handleQueryOnboardingSaga)
		r.With(auth.RequireOperator).Post("/sagas/cert-provisioning", s.handleStartCertProvisioningSaga)
		r.Get("/sagas/cert-provisioning/{sagaID}", s.handleQueryCertProvisioningSaga)
		r.Get("/graph", s.handleQueryGraph)
		r.Get("/correlations/{correlationID}/events", s.handleQueryEvents)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.DB.Ping(ctx); err != nil {
		s.Logger.Error("readiness check: database ping failed", "error", err)
		RespondError(w, http.StatusServiceUnavailable, "unavailable", "database not ready")
		return
	}

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		s.Logger.Error("readiness check: redis ping failed", "error", err)
		RespondError(w, http.StatusServiceUnavailable, "unavailable", "redis not ready")
		return
	}

	Respond(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleStartBootstrapSaga implements start_bootstrap_saga(config) → SagaId.
// The request body is the same JSON shape pkg/bootstrap.LoadConfig reads
// from a file; over HTTP the config travels in the body instead of on disk.
func (s *Server) handleStartBootstrapSaga(w http.ResponseWriter, r *http.Request) {
	var cfg bootstrap.Config
	if !DecodeAndValidate(w, r, &cfg) {
		return
	}
	if cfg.Organization.Name == "" {
		RespondError(w, http.StatusBadRequest, "bad_request", "organization.name is required")
		return
	}

	run, err := s.engine.StartBootstrap(r.Context(), cfg.ToSagaRequest())
	if run == nil {
		s.Logger.Error("starting bootstrap saga", "error", err)
		RespondError(w, http.StatusInternalServerError, "driver_error", err.Error())
		return
	}

	status := run.Saga.Status()
	resp := sagaResponse{
		SagaID: run.Saga.ID,
		Phase:  string(run.Saga.Phase),
		Status: status,
	}
	if err != nil {
		resp.Error = err.Error()
		Respond(w, http.StatusOK, resp)
		return
	}
	Respond(w, http.StatusCreated, resp)
}

// handleAdvanceSaga implements advance_saga(saga_id, driver_result). This
// reference engine drives bootstrap sagas synchronously to completion or
// failure inside StartBootstrap, so there is no pending phase left to
// advance by the time a caller can reach this endpoint — it simply reports
// the saga's current (already-terminal) status, which still satisfies the
// command API's contract of returning the saga's status after the call.
func (s *Server) handleAdvanceSaga(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "sagaID")
	run, ok := s.engine.Lookup(sagaID)
	if !ok {
		RespondError(w, http.StatusNotFound, "not_found", "no saga with that id")
		return
	}
	Respond(w, http.StatusOK, sagaResponse{
		SagaID: run.Saga.ID,
		Phase:  string(run.Saga.Phase),
		Status: run.Saga.Status(),
	})
}

func (s *Server) handleQuerySaga(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "sagaID")
	run, ok := s.engine.Lookup(sagaID)
	if !ok {
		RespondError(w, http.StatusNotFound, "not_found", "no saga with that id")
		return
	}
	Respond(w, http.StatusOK, sagaResponse{
		SagaID:    run.Saga.ID,
		Phase:     string(run.Saga.Phase),
		Status:    run.Saga.Status(),
		Artifacts: &run.Saga.Artifacts,
	})
}

// handleQueryGraph implements query_graph(query) → result. Supported query
// parameters: "entity" (look up one entity by id), "type" (list entities by
// liftednode.InjectionTag, offset-paginated via "page"/"page_size"),
// "category" (list relations by category, likewise paginated). With no
// parameters it returns the projection's summary counters.
func (s *Server) handleQueryGraph(w http.ResponseWriter, r *http.Request) {
	g := s.engine.Graph()
	q := r.URL.Query()

	if id := q.Get("entity"); id != "" {
		node, ok := g.EntityByID(id)
		if !ok {
			RespondError(w, http.StatusNotFound, "not_found", "no entity with that id")
			return
		}
		Respond(w, http.StatusOK, map[string]any{
			"entity":   node,
			"outgoing": g.OutgoingFrom(id),
			"incoming": g.IncomingTo(id),
		})
		return
	}

	if t := q.Get("type"); t != "" {
		params, err := ParseOffsetParams(r)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		entities := g.EntitiesOfType(liftednode.InjectionTag(t))
		Respond(w, http.StatusOK, NewOffsetPage(pageSlice(entities, params), params, len(entities)))
		return
	}

	if category := q.Get("category"); category != "" {
		params, err := ParseOffsetParams(r)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		relations := g.RelationsInCategory(category)
		Respond(w, http.StatusOK, NewOffsetPage(pageSlice(relations, params), params, len(relations)))
		return
	}

	Respond(w, http.StatusOK, map[string]any{
		"entity_count":   g.EntityCount(),
		"relation_count": g.RelationCount(),
		"version":        g.Version(),
		"last_updated":   g.LastUpdated(),
	})
}

// envelopeDTO is the JSON shape of one replayed envelope.
type envelopeDTO struct {
	EventID       string          `json:"event_id"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id,omitempty"`
	Subject       string          `json:"subject"`
	Aggregate     string          `json:"aggregate"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Event         json.RawMessage `json:"event,omitempty"`
}

// handleQueryEvents implements the event-sourced side of query_graph: it
// cursor-paginates the envelopes recorded under a correlation id, in the
// order the saga that produced them appended them.
func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	correlationID := chi.URLParam(r, "correlationID")

	params, err := ParseCursorParams(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	envs, err := s.engine.QueryEvents(r.Context(), correlationID)
	if err != nil {
		s.Logger.Error("querying events", "error", err, "correlation_id", correlationID)
		RespondError(w, http.StatusInternalServerError, "internal", "failed to query events")
		return
	}

	if params.After != nil {
		envs = envelopesAfter(envs, *params.After)
	}
	fetchLimit := params.Limit + 1
	if fetchLimit < len(envs) {
		envs = envs[:fetchLimit]
	}

	page := NewCursorPage(envs, params.Limit, func(env envelope.Envelope) Cursor {
		return Cursor{CreatedAt: env.Timestamp, ID: env.EventID}
	})

	dtos := make([]envelopeDTO, len(page.Items))
	for i, env := range page.Items {
		dtos[i] = toEnvelopeDTO(env)
	}

	Respond(w, http.StatusOK, CursorPage[envelopeDTO]{
		Items:      dtos,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

// envelopesAfter returns the envelopes strictly after c in append order.
func envelopesAfter(envs []envelope.Envelope, c Cursor) []envelope.Envelope {
	for i, env := range envs {
		if env.EventID == c.ID {
			return envs[i+1:]
		}
	}
	return envs
}

func toEnvelopeDTO(env envelope.Envelope) envelopeDTO {
	dto := envelopeDTO{
		EventID:       env.EventID.String(),
		CorrelationID: env.CorrelationID.String(),
		Subject:       env.Subject,
		Aggregate:     env.Aggregate,
		OccurredAt:    env.Timestamp,
	}
	if env.CausationID != nil {
		dto.CausationID = env.CausationID.String()
	}
	if env.Event != nil {
		if raw, err := json.Marshal(env.Event); err == nil {
			dto.Event = raw
		}
	}
	return dto
}

// sagaResponse is the JSON shape returned for every saga-related endpoint.
type sagaResponse struct {
	SagaID    string                   `json:"saga_id"`
	Phase     string                   `json:"phase"`
	Status    saga.Status              `json:"status"`
	Artifacts *sagabootstrap.Artifacts `json:"artifacts,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// startOnboardingRequest is the JSON body for handleStartOnboardingSaga.
type startOnboardingRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	NATSAccountID string `json:"nats_account_id,omitempty"`
	NeedsYubiKey  bool   `json:"needs_yubikey,omitempty"`
}

// handleStartOnboardingSaga implements the person-onboarding saga's
// start command, mirroring handleStartBootstrapSaga's shape.
func (s *Server) handleStartOnboardingSaga(w http.ResponseWriter, r *http.Request) {
	var req startOnboardingRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	run, err := s.engine.StartOnboarding(r.Context(), onboarding.Request{
		Name:          req.Name,
		Email:         req.Email,
		NATSAccountID: req.NATSAccountID,
		NeedsYubiKey:  req.NeedsYubiKey,
	})
	if run == nil {
		s.Logger.Error("starting onboarding saga", "error", err)
		RespondError(w, http.StatusInternalServerError, "driver_error", err.Error())
		return
	}

	resp := onboardingSagaResponse{SagaID: run.Saga.ID, Phase: string(run.Saga.Phase), Status: run.Saga.Status()}
	if err != nil {
		resp.Error = err.Error()
		Respond(w, http.StatusOK, resp)
		return
	}
	Respond(w, http.StatusCreated, resp)
}

func (s *Server) handleQueryOnboardingSaga(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "sagaID")
	run, ok := s.engine.LookupOnboarding(sagaID)
	if !ok {
		RespondError(w, http.StatusNotFound, "not_found", "no onboarding saga with that id")
		return
	}
	Respond(w, http.StatusOK, onboardingSagaResponse{
		SagaID:    run.Saga.ID,
		Phase:     string(run.Saga.Phase),
		Status:    run.Saga.Status(),
		Artifacts: &run.Saga.Artifacts,
	})
}

// onboardingSagaResponse is the JSON shape for onboarding-saga endpoints.
type onboardingSagaResponse struct {
	SagaID    string                `json:"saga_id"`
	Phase     string                `json:"phase"`
	Status    saga.Status           `json:"status"`
	Artifacts *onboarding.Artifacts `json:"artifacts,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// startCertProvisioningRequest is the JSON body for
// handleStartCertProvisioningSaga.
type startCertProvisioningRequest struct {
	PersonName    string `json:"person_name" validate:"required"`
	YubiKeySerial string `json:"yubikey_serial" validate:"required"`
	Slot          string `json:"slot" validate:"required,hexadecimal,len=2"`
	ValidDays     int    `json:"valid_days" validate:"required,gte=1"`
}

// handleStartCertProvisioningSaga implements the certificate-provisioning
// saga's start command (spec.md Scenario S4).
func (s *Server) handleStartCertProvisioningSaga(w http.ResponseWriter, r *http.Request) {
	var req startCertProvisioningRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	run, err := s.engine.StartCertProvisioning(r.Context(), certprovisioning.Request{
		PersonName:    req.PersonName,
		YubiKeySerial: req.YubiKeySerial,
		Slot:          req.Slot,
		ValidDays:     req.ValidDays,
	})
	if run == nil {
		s.Logger.Error("starting certificate-provisioning saga", "error", err)
		RespondError(w, http.StatusInternalServerError, "driver_error", err.Error())
		return
	}

	resp := certProvisioningSagaResponse{SagaID: run.Saga.ID, Phase: string(run.Saga.Phase), Status: run.Saga.Status()}
	if err != nil {
		resp.Error = err.Error()
		Respond(w, http.StatusOK, resp)
		return
	}
	Respond(w, http.StatusCreated, resp)
}

func (s *Server) handleQueryCertProvisioningSaga(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "sagaID")
	run, ok := s.engine.LookupCertProvisioning(sagaID)
	if !ok {
		RespondError(w, http.StatusNotFound, "not_found", "no certificate-provisioning saga with that id")
		return
	}
	Respond(w, http.StatusOK, certProvisioningSagaResponse{
		SagaID:    run.Saga.ID,
		Phase:     string(run.Saga.Phase),
		Status:    run.Saga.Status(),
		Artifacts: &run.Saga.Artifacts,
	})
}

// certProvisioningSagaResponse is the JSON shape for
// certificate-provisioning-saga endpoints.
type certProvisioningSagaResponse struct {
	SagaID    string                      `json:"saga_id"`
	Phase     string                      `json:"phase"`
	Status    saga.Status                 `json:"status"`
	Artifacts *certprovisioning.Artifacts `json:"artifacts,omitempty"`
	Error     string                      `json:"error,omitempty"`
}
