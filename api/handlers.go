package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/stash"
)

// RecordRequest is the body of create and update requests.
type RecordRequest struct {
	Content string `json:"content"`
}

// BatchRequest is the body of a batch import.
type BatchRequest struct {
	Contents []string `json:"contents"`
}

// BatchResponse lists the records a batch import created.
type BatchResponse struct {
	Records []*record.Record `json:"records"`
	Count   int              `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateRecord handles POST /v1/records.
func (s *Server) handleCreateRecord(c *fiber.Ctx) error {
	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	r, err := s.svc.Create(c.UserContext(), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// handleImportRecords handles POST /v1/records/batch. Either every content
// is stored or none is.
func (s *Server) handleImportRecords(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Contents) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "contents must not be empty")
	}

	records, err := s.svc.Import(c.UserContext(), req.Contents)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(BatchResponse{Records: records, Count: len(records)})
}

// handleSearchRecords handles GET /v1/records.
// Query parameters:
//   - q (optional): space separated tags that must all be present
//   - limit (optional, default 50, max 500)
//   - offset (optional, default 0)
//   - sort_by (optional): created_at or updated_at
//   - order (optional): asc or desc
func (s *Server) handleSearchRecords(c *fiber.Ctx) error {
	req, err := searchRequest(c)
	if err != nil {
		return err
	}

	page, err := s.svc.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// handleFindByTags handles GET /v1/records/by-tags?q=, returning the record
// whose tag set is exactly q.
func (s *Server) handleFindByTags(c *fiber.Ctx) error {
	r, err := s.svc.FindByTags(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// handleGetRecord handles GET /v1/records/:id.
func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	r, err := s.svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// handleUpdateRecord handles PUT /v1/records/:id.
func (s *Server) handleUpdateRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	r, err := s.svc.Update(c.UserContext(), id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// handleDeleteRecord handles DELETE /v1/records/:id.
func (s *Server) handleDeleteRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	if err := s.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleTagStatistics handles GET /v1/tags.
func (s *Server) handleTagStatistics(c *fiber.Ctx) error {
	stats, err := s.svc.TagStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"tags":  stats,
		"count": len(stats),
	})
}

func recordID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "id must be a UUID")
	}
	return id, nil
}

func searchRequest(c *fiber.Ctx) (stash.SearchRequest, error) {
	req := stash.SearchRequest{
		Query:     c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("order"),
	}

	var err error
	if req.Limit, err = intQuery(c, "limit"); err != nil {
		return req, err
	}
	if req.Offset, err = intQuery(c, "offset"); err != nil {
		return req, err
	}
	return req, nil
}

func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a non-negative integer")
	}
	return n, nil
}
