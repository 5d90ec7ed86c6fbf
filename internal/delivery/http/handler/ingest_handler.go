package handler

import (
	"context"
	"log"

	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/domain/posting"
	"datajobs/internal/infrastructure/cache"
	"datajobs/internal/ingest"
	"datajobs/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type IngestHandler struct {
	coord  *ingest.Coordinator
	batch  *ingest.BatchRunner
	cache  *cache.Redis
	logger *log.Logger
}

type batchRequest struct {
	Records []posting.RawRecord `json:"records"`
}

func NewIngestHandler(coord *ingest.Coordinator, batch *ingest.BatchRunner, rdb *cache.Redis, logger *log.Logger) *IngestHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{coord: coord, batch: batch, cache: rdb, logger: logger}
}

func (h *IngestHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/ingest", h.IngestOne)
	r.Post("/ingest/batch", h.IngestBatch)
}

func (h *IngestHandler) IngestOne(c fiber.Ctx) error {
	var raw posting.RawRecord
	if err := c.Bind().Body(&raw); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	fillSourceFromToken(c, &raw)

	outcome, err := h.coord.Ingest(c.Context(), raw)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	h.invalidateViews(c.Context())

	status := fiber.StatusOK
	if outcome.Kind == posting.OutcomeRejected {
		status = fiber.StatusUnprocessableEntity
	}
	return response.Success(c, status, string(outcome.Kind), outcomeBody(outcome))
}

func (h *IngestHandler) IngestBatch(c fiber.Ctx) error {
	var req batchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if len(req.Records) == 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "records is empty", nil, nil)
	}

	source := sourceNameFromToken(c)
	for i := range req.Records {
		fillSourceFromToken(c, &req.Records[i])
	}

	report, err := h.batch.Run(c.Context(), source, req.Records)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	h.invalidateViews(c.Context())

	outcomes := make([]map[string]any, len(report.Outcomes))
	for i, o := range report.Outcomes {
		outcomes[i] = outcomeBody(o)
	}
	data := map[string]any{
		"run_id": report.RunID,
		"total":  report.Total,
		"tally": map[string]int{
			"inserted":   report.Tally[posting.OutcomeInserted],
			"updated":    report.Tally[posting.OutcomeUpdated],
			"duplicates": report.Tally[posting.OutcomeDuplicate],
			"rejected":   report.Tally[posting.OutcomeRejected],
		},
		"outcomes": outcomes,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *IngestHandler) invalidateViews(ctx context.Context) {
	if err := h.cache.InvalidateIngestViews(ctx); err != nil {
		h.logger.Printf("cache invalidation failed | err=%v", err)
	}
}

func outcomeBody(o posting.Outcome) map[string]any {
	body := map[string]any{"outcome": string(o.Kind)}
	if o.JobID != uuid.Nil {
		body["job_id"] = o.JobID
	}
	if len(o.Reasons) > 0 {
		body["reasons"] = o.Reasons
	}
	return body
}

func fillSourceFromToken(c fiber.Ctx, raw *posting.RawRecord) {
	if raw.Source != "" {
		return
	}
	raw.Source = sourceNameFromToken(c)
}

func sourceNameFromToken(c fiber.Ctx) string {
	if name, ok := c.Locals(middleware.CtxSourceNameKey).(string); ok {
		return name
	}
	return ""
}
