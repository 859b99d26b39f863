package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dynqr/redirector/internal/model"
	"dynqr/redirector/internal/service"
	"dynqr/redirector/pkg/response"
)

type QRCodeHandler struct {
	qrCodeService service.QRCodeService
}

func NewQRCodeHandler(qrCodeService service.QRCodeService) *QRCodeHandler {
	return &QRCodeHandler{qrCodeService: qrCodeService}
}

type CreateQRCodeRequest struct {
	Name        string     `json:"name"`
	CurrentURL  string     `json:"current_url"`
	Description *string    `json:"description,omitempty"`
	MaxScans    *int64     `json:"max_scans,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	FallbackURL *string    `json:"fallback_url,omitempty"`
}

// UpdateQRCodeRequest is a partial update: omitted fields are kept, an explicit
// null clears the nullable ones.
type UpdateQRCodeRequest struct {
	Name        *string                   `json:"name"`
	CurrentURL  *string                   `json:"current_url"`
	Description model.Nullable[string]    `json:"description"`
	IsActive    *bool                     `json:"is_active"`
	MaxScans    model.Nullable[int64]     `json:"max_scans"`
	ExpiresAt   model.Nullable[time.Time] `json:"expires_at"`
	FallbackURL model.Nullable[string]    `json:"fallback_url"`
}

func (r *UpdateQRCodeRequest) patch() *model.QRCodePatch {
	return &model.QRCodePatch{
		Name:        r.Name,
		CurrentURL:  r.CurrentURL,
		Description: r.Description,
		IsActive:    r.IsActive,
		MaxScans:    r.MaxScans,
		ExpiresAt:   r.ExpiresAt,
		FallbackURL: r.FallbackURL,
	}
}

type QRCodeResponse struct {
	*model.QRCode
	RedirectPath string            `json:"redirect_path"`
	Lifespan     *service.Lifespan `json:"lifespan,omitempty"`
}

func newQRCodeResponse(code *model.QRCode) QRCodeResponse {
	return QRCodeResponse{QRCode: code, RedirectPath: "/qr/" + code.ShortID}
}

// Create registers a new dynamic code for the caller.
func (h *QRCodeHandler) Create(c *gin.Context) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid owner context")
		return
	}

	var req CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.qrCodeService.Create(c.Request.Context(), ownerID, service.CreateQRCodeInput{
		Name:        req.Name,
		CurrentURL:  req.CurrentURL,
		Description: req.Description,
		MaxScans:    req.MaxScans,
		ExpiresAt:   req.ExpiresAt,
		FallbackURL: req.FallbackURL,
	})
	if err != nil {
		writeQRCodeError(c, err, "create qr code failed")
		return
	}

	response.Created(c, newQRCodeResponse(code))
}

func (h *QRCodeHandler) List(c *gin.Context) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid owner context")
		return
	}

	codes, err := h.qrCodeService.List(c.Request.Context(), ownerID)
	if err != nil {
		response.InternalError(c, "list qr codes failed")
		return
	}

	out := make([]QRCodeResponse, 0, len(codes))
	for i := range codes {
		out = append(out, newQRCodeResponse(&codes[i]))
	}
	response.Success(c, out)
}

// Get returns one code together with its current lifespan.
func (h *QRCodeHandler) Get(c *gin.Context) {
	ownerID, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	code, err := h.qrCodeService.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		writeQRCodeError(c, err, "get qr code failed")
		return
	}

	resp := newQRCodeResponse(code)
	lifespan := h.qrCodeService.Lifespan(code)
	resp.Lifespan = &lifespan
	response.Success(c, resp)
}

func (h *QRCodeHandler) Update(c *gin.Context) {
	ownerID, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req UpdateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.qrCodeService.Update(c.Request.Context(), ownerID, id, req.patch())
	if err != nil {
		writeQRCodeError(c, err, "update qr code failed")
		return
	}

	response.Success(c, newQRCodeResponse(code))
}

func (h *QRCodeHandler) Delete(c *gin.Context) {
	ownerID, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	if err := h.qrCodeService.Delete(c.Request.Context(), ownerID, id); err != nil {
		writeQRCodeError(c, err, "delete qr code failed")
		return
	}

	response.Success(c, nil)
}

func ownerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid owner context")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid qr code id")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

func writeQRCodeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrQRCodeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrInvalidFallbackURL),
		errors.Is(err, service.ErrInvalidMaxScans),
		errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrShortIDExhausted):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, fallback)
	}
}
