package handler

import (
	"strconv"

	"job-navigator/internal/delivery/http/dto"
	"job-navigator/internal/pkg/response"
	"job-navigator/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const defaultPopularLimit = 10

type CatalogHandler struct {
	uc usecase.CatalogUsecase
}

func NewCatalogHandler(uc usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	companies := r.Group("/companies")
	companies.Get("/", h.ListCompanies)
	companies.Get("/active", h.ListActiveCompanies)
	companies.Get("/with-count", h.ListCompaniesWithCount)

	stacks := r.Group("/tech-stacks")
	stacks.Get("/", h.ListTechStacks)
	stacks.Get("/by-category", h.ListTechStacksByCategory)
	stacks.Get("/popular", h.ListPopularTechStacks)
	stacks.Get("/with-count", h.ListTechStacksWithCount)

	r.Get("/experience/categories/with-count", h.ListExperienceCategoriesWithCount)
}

// ListCompanies honours ?activeOnly=true as a shortcut for /companies/active.
func (h *CatalogHandler) ListCompanies(c fiber.Ctx) error {
	activeOnly := false
	if raw := c.Query("activeOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(fmtQueryError("activeOnly", raw))
		}
		activeOnly = v
	}
	if activeOnly {
		return h.ListActiveCompanies(c)
	}

	items, err := h.uc.Companies(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompanies(items))
}

func (h *CatalogHandler) ListActiveCompanies(c fiber.Ctx) error {
	items, err := h.uc.ActiveCompanies(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompanies(items))
}

func (h *CatalogHandler) ListCompaniesWithCount(c fiber.Ctx) error {
	items, err := h.uc.CompaniesWithCount(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompaniesWithCount(items))
}

func (h *CatalogHandler) ListTechStacks(c fiber.Ctx) error {
	items, err := h.uc.TechStacks(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTechStacks(items))
}

func (h *CatalogHandler) ListTechStacksByCategory(c fiber.Ctx) error {
	groups, err := h.uc.TechStacksByCategory(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTechStacksByCategory(groups))
}

func (h *CatalogHandler) ListPopularTechStacks(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", defaultPopularLimit)
	if err != nil {
		return badRequest(err)
	}

	items, err := h.uc.PopularTechStacks(c.Context(), limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTechStacksWithCount(items))
}

func (h *CatalogHandler) ListTechStacksWithCount(c fiber.Ctx) error {
	items, err := h.uc.TechStacksWithCount(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTechStacksWithCount(items))
}

func (h *CatalogHandler) ListExperienceCategoriesWithCount(c fiber.Ctx) error {
	items, err := h.uc.ExperienceCategoriesWithCount(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewExperienceCategoriesWithCount(items))
}
