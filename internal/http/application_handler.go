package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"jobtrackerhub/internal/domain"
	"jobtrackerhub/internal/repository"
)

// ApplicationHandler mantiene dependencias para endpoints de postulaciones.
type ApplicationHandler struct {
	logger *zap.Logger
	apps   repository.ApplicationRepository
}

func NewApplicationHandler(logger *zap.Logger, apps repository.ApplicationRepository) *ApplicationHandler {
	return &ApplicationHandler{
		logger: logger,
		apps:   apps,
	}
}

type applicationRequest struct {
	Company       string     `json:"company" binding:"required"`
	Position      string     `json:"position" binding:"required"`
	Status        string     `json:"status" binding:"required"`
	DateApplied   time.Time  `json:"date_applied" binding:"required"`
	Location      string     `json:"location" binding:"required"`
	Salary        string     `json:"salary"`
	Notes         string     `json:"notes"`
	ContactPerson string     `json:"contact_person"`
	ContactEmail  string     `json:"contact_email" binding:"omitempty,email"`
	NextFollowUp  *time.Time `json:"next_follow_up"`
}

// List maneja GET /applications.
func (h *ApplicationHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	apps, err := h.apps.ListByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list applications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list applications"})
		return
	}
	if apps == nil {
		apps = []domain.JobApplication{}
	}
	c.JSON(http.StatusOK, apps)
}

// Create maneja POST /applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create application request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if !domain.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	app := domain.JobApplication{
		ID:            uuid.NewString(),
		UserID:        claims.UserID,
		Company:       req.Company,
		Position:      req.Position,
		Status:        req.Status,
		DateApplied:   req.DateApplied,
		Location:      req.Location,
		Salary:        req.Salary,
		Notes:         req.Notes,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		NextFollowUp:  req.NextFollowUp,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.apps.Create(c.Request.Context(), app); err != nil {
		h.logger.Error("create application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create application"})
		return
	}
	c.JSON(http.StatusCreated, app)
}

// Campos opcionales: solo los presentes en el body se aplican sobre la fila.
type applicationUpdateRequest struct {
	Company       *string    `json:"company"`
	Position      *string    `json:"position"`
	Status        *string    `json:"status"`
	DateApplied   *time.Time `json:"date_applied"`
	Location      *string    `json:"location"`
	Salary        *string    `json:"salary"`
	Notes         *string    `json:"notes"`
	ContactPerson *string    `json:"contact_person"`
	ContactEmail  *string    `json:"contact_email" binding:"omitempty,email"`
	NextFollowUp  *time.Time `json:"next_follow_up"`
}

// Update maneja PUT /applications/:id como actualizacion parcial.
func (h *ApplicationHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req applicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update application request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	app, err := h.apps.GetByID(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "application not found"})
			return
		}
		h.logger.Error("load application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update application"})
		return
	}

	if req.Company != nil {
		app.Company = *req.Company
	}
	if req.Position != nil {
		app.Position = *req.Position
	}
	if req.Status != nil {
		app.Status = *req.Status
	}
	if req.DateApplied != nil {
		app.DateApplied = *req.DateApplied
	}
	if req.Location != nil {
		app.Location = *req.Location
	}
	if req.Salary != nil {
		app.Salary = *req.Salary
	}
	if req.Notes != nil {
		app.Notes = *req.Notes
	}
	if req.ContactPerson != nil {
		app.ContactPerson = *req.ContactPerson
	}
	if req.ContactEmail != nil {
		app.ContactEmail = *req.ContactEmail
	}
	if req.NextFollowUp != nil {
		app.NextFollowUp = req.NextFollowUp
	}

	if err := h.apps.Update(c.Request.Context(), app); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "application not found"})
			return
		}
		h.logger.Error("update application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update application"})
		return
	}
	c.JSON(http.StatusOK, app)
}

// Delete maneja DELETE /applications/:id.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.apps.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "application not found"})
			return
		}
		h.logger.Error("delete application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete application"})
		return
	}
	c.Status(http.StatusNoContent)
}
