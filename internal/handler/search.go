package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/repository"
)

// SearchHandler serves batch search.
type SearchHandler struct {
    Batches repository.BatchStore
}

func NewSearchHandler(batches repository.BatchStore) *SearchHandler {
    return &SearchHandler{Batches: batches}
}

// Search matches batches by a query string. ?field= narrows the match
// to one column (batchId, batchName, manufacturer, productType);
// anything else searches all of them.
func (h *SearchHandler) Search(c echo.Context) error {
    query := strings.TrimSpace(c.QueryParam("q"))
    if query == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
    }

    field := repository.SearchField(strings.TrimSpace(c.QueryParam("field")))
    switch field {
    case repository.SearchBatchID, repository.SearchBatchName,
        repository.SearchManufacturer, repository.SearchProductType:
    default:
        field = repository.SearchAll
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    batches, err := h.Batches.Search(ctx, query, field)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "query":   query,
        "field":   field,
        "results": batches,
        "count":   len(batches),
    })
}
