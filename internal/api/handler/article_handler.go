package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/ports"
)

// ArticleHandler handles HTTP requests for articles. Reads are public;
// writes require EDITOR.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// List handles GET /api/articles?page=&size=.
//
// @Summary      List articles, newest first
// @Tags         articles
// @Produce      json,xml
// @Param        page  query     int  false  "0-based page"   default(0)
// @Param        size  query     int  false  "Page size"      default(10)
// @Success      200   {object}  domain.ArticlePage
// @Failure      400   {object}  errorResponse
// @Router       /api/articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	page, err := intQuery(c, "page", 0)
	if err != nil {
		return err
	}
	size, err := intQuery(c, "size", 0)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "page", result)
}

// Get handles GET /api/articles/:id.
//
// @Summary      Get an article
// @Tags         articles
// @Produce      json,xml
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  domain.Article
// @Failure      404  {object}  errorResponse
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "article", article)
}

// ByCategory handles GET /api/articles/category/:categoryId.
//
// @Summary      List the articles of a category
// @Tags         articles
// @Produce      json,xml
// @Param        categoryId  path      string  true  "Category id"
// @Success      200         {array}   domain.Article
// @Failure      404         {object}  errorResponse
// @Router       /api/articles/category/{categoryId} [get]
func (h *ArticleHandler) ByCategory(c echo.Context) error {
	articles, err := h.service.ListByCategory(c.Request().Context(), c.Param("categoryId"))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "articles", "article", articles)
}

// Grouped handles GET /api/articles/grouped-by-category.
//
// @Summary      Articles grouped by category name
// @Tags         articles
// @Produce      json,xml
// @Success      200  {object}  map[string][]domain.Article
// @Router       /api/articles/grouped-by-category [get]
func (h *ArticleHandler) Grouped(c echo.Context) error {
	grouped, err := h.service.GroupedByCategory(c.Request().Context())
	if err != nil {
		return err
	}
	if !WantsXML(c) {
		return c.JSON(http.StatusOK, grouped)
	}

	groups := make([]categoryGroup, 0, len(grouped))
	for name, articles := range grouped {
		groups = append(groups, categoryGroup{Name: name, Articles: articles})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return respondList(c, http.StatusOK, "categories", "category", groups)
}

// Create handles POST /api/articles.
//
// @Summary      Create an article
// @Tags         articles
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        body  body      articleRequest  true  "Article"
// @Success      201   {object}  domain.Article
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req articleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	article, err := h.service.Create(c.Request().Context(), articleInput(c, req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "article", article)
}

// Update handles PUT /api/articles/:id.
//
// @Summary      Update an article
// @Tags         articles
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        id    path      string          true  "Article id"
// @Param        body  body      articleRequest  true  "Article"
// @Success      200   {object}  domain.Article
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	var req articleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	article, err := h.service.Update(c.Request().Context(), c.Param("id"), articleInput(c, req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "article", article)
}

// Delete handles DELETE /api/articles/:id.
//
// @Summary      Delete an article
// @Tags         articles
// @Security     BearerAuth
// @Param        id   path  string  true  "Article id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func articleInput(c echo.Context, req articleRequest) ports.ArticleInput {
	input := ports.ArticleInput{
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if p, ok := authn.PrincipalFrom(c.Request().Context()); ok {
		input.Author = p.Subject
	}
	return input
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}
