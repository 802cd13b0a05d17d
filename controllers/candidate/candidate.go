package candidate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"office-portal/logger"
	"office-portal/middleware"
	candidateModel "office-portal/models/candidate"
	"office-portal/services/audit"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CandidateController manages the interview pipeline. Admin and secretary
// only; routes enforce the roles.
type CandidateController struct {
	DB    *gorm.DB
	Audit *audit.Service
}

// NewCandidateController creates a new candidate controller
func NewCandidateController(db *gorm.DB, auditSvc *audit.Service) *CandidateController {
	return &CandidateController{DB: db, Audit: auditSvc}
}

type candidateRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	Position    string  `json:"position"`
	Source      *string `json:"source,omitempty"`
	Interviewer *string `json:"interviewer,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Notes       string  `json:"notes"`
}

func (r candidateRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Position == "" {
		return errors.New("position is required")
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}

type stageRequest struct {
	Stage string `json:"stage"`
}

// Index lists candidates, optionally filtered with ?stage= and ?position=.
func (cc *CandidateController) Index(c *fiber.Ctx) error {
	query := cc.DB.Model(&candidateModel.Candidate{})
	if stage := c.Query("stage"); stage != "" {
		if !candidateModel.CandidateStage(stage).IsValid() {
			return badRequest(c, "Invalid stage")
		}
		query = query.Where("stage = ?", stage)
	}
	if position := c.Query("position"); position != "" {
		query = query.Where("position = ?", position)
	}

	var candidates []candidateModel.Candidate
	if err := query.Where("deleted_at IS NULL").Order("created_at DESC").Find(&candidates).Error; err != nil {
		logger.Error("Failed to list candidates", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidates loaded",
		Data:    candidates,
	})
}

// Show returns one candidate.
func (cc *CandidateController) Show(c *fiber.Ctx) error {
	candidate, err := cc.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidate loaded",
		Data:    candidate,
	})
}

// Store creates a candidate in the applied stage.
func (cc *CandidateController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req candidateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	candidate := candidateModel.Candidate{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Position:    req.Position,
		Stage:       candidateModel.StageApplied,
		Source:      req.Source,
		Interviewer: req.Interviewer,
		Rating:      req.Rating,
		Notes:       req.Notes,
		CreatedBy:   authUser.Email,
	}
	if err := cc.DB.Create(&candidate).Error; err != nil {
		logger.Error("Failed to create candidate", err)
		return serverError(c)
	}

	cc.Audit.Append(authUser.ID, authUser.Email, "candidate.create", "candidate", candidate.ID, fiber.Map{
		"position": candidate.Position,
	})

	logger.Success("Candidate created with ID: " + strconv.FormatUint(uint64(candidate.ID), 10))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Candidate created",
		Data:    candidate,
	})
}

// Update edits a candidate's details. The stage moves through UpdateStage.
func (cc *CandidateController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	candidate, err := cc.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	var req candidateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	candidate.Name = req.Name
	candidate.Email = req.Email
	candidate.Phone = req.Phone
	candidate.Position = req.Position
	candidate.Source = req.Source
	candidate.Interviewer = req.Interviewer
	candidate.Rating = req.Rating
	candidate.Notes = req.Notes
	if err := cc.DB.Save(candidate).Error; err != nil {
		logger.Error("Failed to update candidate", err)
		return serverError(c)
	}

	cc.Audit.Append(authUser.ID, authUser.Email, "candidate.update", "candidate", candidate.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidate updated",
		Data:    candidate,
	})
}

// UpdateStage moves a candidate to another pipeline stage.
func (cc *CandidateController) UpdateStage(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	candidate, err := cc.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	var req stageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	stage := candidateModel.CandidateStage(req.Stage)
	if !stage.IsValid() {
		return badRequest(c, "Invalid stage")
	}

	previous := candidate.Stage
	candidate.Stage = stage
	if err := cc.DB.Save(candidate).Error; err != nil {
		logger.Error("Failed to update candidate stage", err)
		return serverError(c)
	}

	cc.Audit.Append(authUser.ID, authUser.Email, "candidate.stage_change", "candidate", candidate.ID, fiber.Map{
		"from": previous,
		"to":   stage,
	})

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidate stage updated",
		Data:    candidate,
	})
}

// Destroy soft-deletes a candidate.
func (cc *CandidateController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	candidate, err := cc.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	deletedAt := time.Now()
	candidate.DeletedAt = &deletedAt
	if err := cc.DB.Save(candidate).Error; err != nil {
		logger.Error("Failed to delete candidate", err)
		return serverError(c)
	}

	cc.Audit.Append(authUser.ID, authUser.Email, "candidate.delete", "candidate", candidate.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidate deleted",
	})
}

// ExportCSV streams the pipeline as a CSV attachment, same filters as Index.
func (cc *CandidateController) ExportCSV(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	query := cc.DB.Model(&candidateModel.Candidate{}).Where("deleted_at IS NULL")
	if stage := c.Query("stage"); stage != "" {
		if !candidateModel.CandidateStage(stage).IsValid() {
			return badRequest(c, "Invalid stage")
		}
		query = query.Where("stage = ?", stage)
	}
	if position := c.Query("position"); position != "" {
		query = query.Where("position = ?", position)
	}

	var candidates []candidateModel.Candidate
	if err := query.Order("created_at ASC").Find(&candidates).Error; err != nil {
		logger.Error("Failed to export candidates", err)
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"id", "name", "email", "phone", "position", "stage", "source", "interviewer", "rating", "notes", "created_at"}
	if err := writer.Write(header); err != nil {
		logger.Error("Failed to write CSV header", err)
		return serverError(c)
	}
	for _, cand := range candidates {
		row := []string{
			strconv.FormatUint(uint64(cand.ID), 10),
			cand.Name,
			cand.Email,
			stringOrEmpty(cand.Phone),
			cand.Position,
			cand.Stage.String(),
			stringOrEmpty(cand.Source),
			stringOrEmpty(cand.Interviewer),
			ratingOrEmpty(cand.Rating),
			cand.Notes,
			cand.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			logger.Error("Failed to write CSV row", err)
			return serverError(c)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.Error("Failed to flush CSV", err)
		return serverError(c)
	}

	cc.Audit.Append(authUser.ID, authUser.Email, "candidate.export", "candidate", 0, fiber.Map{
		"rows": len(candidates),
	})

	filename := "candidates-" + time.Now().Format("2006-01-02") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (cc *CandidateController) load(c *fiber.Ctx) (*candidateModel.Candidate, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, errInvalidID
	}
	var candidate candidateModel.Candidate
	if err := cc.DB.Where("deleted_at IS NULL").First(&candidate, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &candidate, nil
}

var (
	errInvalidID = errors.New("invalid candidate id")
	errNotFound  = errors.New("candidate not found")
)

func respondLoadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errInvalidID):
		return badRequest(c, "Invalid candidate id")
	case errors.Is(err, errNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Candidate not found",
		})
	default:
		logger.Error("Failed to load candidate", err)
		return serverError(c)
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ratingOrEmpty(r *int) string {
	if r == nil {
		return ""
	}
	return strconv.Itoa(*r)
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Invalid user claims",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
