package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"job-navigator/internal/delivery/http/dto"
	"job-navigator/internal/delivery/http/middleware"
	"job-navigator/internal/domain/job"
	"job-navigator/internal/pkg/response"
	"job-navigator/internal/search"
	"job-navigator/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const (
	defaultPageSize = 20
	defaultSortBy   = search.SortByPostedAt
	maxBatchSize    = 500
)

type JobsHandler struct {
	search usecase.JobSearchUsecase
	ingest usecase.JobIngestUsecase
}

func NewJobsHandler(search usecase.JobSearchUsecase, ingest usecase.JobIngestUsecase) *JobsHandler {
	return &JobsHandler{search: search, ingest: ingest}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.HandleSearch)
	grp.Post("/rank", h.HandleRank)
	grp.Post("/batch", h.HandleBatch)
	grp.Delete("/cache", h.HandleEvictCache)
	grp.Get("/:id", h.HandleDetail)
	grp.Get("/:id/match", h.HandleMatch)

	r.Get("/facets", h.HandleFacets)
}

func (h *JobsHandler) HandleSearch(c fiber.Ctx) error {
	q, err := parseSearchQuery(c)
	if err != nil {
		return badRequest(err)
	}

	res, err := h.search.Search(c.Context(), q)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobSearch(res))
}

func (h *JobsHandler) HandleDetail(c fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return badRequest(err)
	}

	j, err := h.search.GetDetail(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobDetail(j))
}

func (h *JobsHandler) HandleMatch(c fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return badRequest(err)
	}
	ids, err := parseIDList(c, "techStackIds")
	if err != nil {
		return badRequest(err)
	}

	res, err := h.search.Match(c.Context(), id, ids)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatch(res))
}

func (h *JobsHandler) HandleRank(c fiber.Ctx) error {
	var req dto.RankRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(fmt.Errorf("%w: malformed body: %v", usecase.ErrInvalidQuery, err))
	}

	res, err := h.search.Rank(c.Context(), usecase.RankParams{
		TechStackIDs: req.TechStackIDs,
		MinScore:     req.MinScore,
		Limit:        req.Limit,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRank(res))
}

// HandleBatch ingests postings in order. On the first failing item the
// postings saved before it are kept and reported alongside the error.
func (h *JobsHandler) HandleBatch(c fiber.Ctx) error {
	var req []dto.JobBatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(fmt.Errorf("%w: malformed body: %v", usecase.ErrInvalidInput, err))
	}
	if len(req) > maxBatchSize {
		return badRequest(fmt.Errorf("%w: batch cannot exceed %d postings", usecase.ErrInvalidInput, maxBatchSize))
	}

	cmds := make([]usecase.SaveJobCommand, 0, len(req))
	for _, it := range req {
		cmds = append(cmds, it.Command())
	}

	ids, err := h.ingest.SaveBatch(c.Context(), cmds)
	if ids == nil {
		ids = []int64{}
	}
	if err != nil {
		appErr := mapUsecaseError(err)
		var ae *middleware.AppError
		if len(ids) > 0 && errors.As(appErr, &ae) {
			ae.Data = dto.JobBatchResponse{SavedCount: len(ids), JobIDs: ids}
		}
		return appErr
	}
	return response.Created(c, dto.JobBatchResponse{SavedCount: len(ids), JobIDs: ids})
}

func (h *JobsHandler) HandleEvictCache(c fiber.Ctx) error {
	if err := h.search.EvictCache(c.Context()); err != nil {
		return mapUsecaseError(err)
	}
	return response.NoContent(c)
}

func (h *JobsHandler) HandleFacets(c fiber.Ctx) error {
	fc, err := h.search.FacetCounts(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewFacetCounts(fc))
}

// parseSearchQuery applies the listing defaults: first page of 20, newest
// postings first, active postings only. The keyword is passed through raw so
// its length is checked before any trimming.
func parseSearchQuery(c fiber.Ctx) (search.Query, error) {
	page, err := parseQueryIntStrict(c, "page", 0)
	if err != nil {
		return search.Query{}, err
	}
	size, err := parseQueryIntStrict(c, "size", defaultPageSize)
	if err != nil {
		return search.Query{}, err
	}
	companyIDs, err := parseIDList(c, "companyIds")
	if err != nil {
		return search.Query{}, err
	}
	techStackIDs, err := parseIDList(c, "techStackIds")
	if err != nil {
		return search.Query{}, err
	}

	category, err := job.ParseExperienceCategory(c.Query("experienceLevel"))
	if err != nil {
		return search.Query{}, fmt.Errorf("%w: experienceLevel: %v", usecase.ErrInvalidQuery, err)
	}
	jobType, err := job.ParseJobType(c.Query("jobType"))
	if err != nil {
		return search.Query{}, fmt.Errorf("%w: jobType: %v", usecase.ErrInvalidQuery, err)
	}

	active := true
	if raw := strings.TrimSpace(c.Query("isActive")); raw != "" {
		active, err = strconv.ParseBool(raw)
		if err != nil {
			return search.Query{}, fmtQueryError("isActive", raw)
		}
	}

	sortBy := strings.TrimSpace(c.Query("sortBy"))
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	direction := strings.TrimSpace(c.Query("sortDirection"))
	if direction == "" {
		direction = search.SortDesc
	}

	return search.Query{
		Keyword:            c.Query("keyword"),
		CompanyIDs:         companyIDs,
		TechStackIDs:       techStackIDs,
		ExperienceCategory: category,
		JobType:            jobType,
		Location:           strings.TrimSpace(c.Query("location")),
		IsActive:           &active,
		Page:               page,
		Size:               size,
		SortBy:             sortBy,
		SortDirection:      direction,
	}, nil
}
