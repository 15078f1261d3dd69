package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	marketplacesvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/marketplace"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

// multipart overhead on top of the image itself
const uploadSlack = 64 << 10

type MarketplaceHandler struct {
	service *marketplacesvc.Service
	log     *zap.Logger
}

func NewMarketplaceHandler(service *marketplacesvc.Service, log *zap.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{service: service, log: loggerOrNop(log)}
}

func (h *MarketplaceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeValidation(w, r, "limit")
		return
	}

	items, err := h.service.GetApprovedItems(r.Context(), actor.TenantID, marketplacesvc.ItemFilter{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := dto.ItemsResponse{Items: make([]dto.ItemResponse, 0, len(items))}
	for _, item := range items {
		view, err := h.itemResponse(r, item)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		resp.Items = append(resp.Items, view)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MarketplaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.CreateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	item, err := h.service.CreateItem(r.Context(), actor, marketplacesvc.ItemDraft{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		ImageKeys:   req.ImageKeys,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	view, err := h.itemResponse(r, item)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *MarketplaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}
	itemID, ok := uuidParam(r, "id")
	if !ok {
		writeCode(w, r, http.StatusNotFound, "NOT_FOUND")
		return
	}

	item, err := h.service.GetItem(r.Context(), actor, itemID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	view, err := h.itemResponse(r, item)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *MarketplaceHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}
	itemID, ok := uuidParam(r, "id")
	if !ok {
		writeCode(w, r, http.StatusNotFound, "NOT_FOUND")
		return
	}

	item, err := h.service.MarkSold(r.Context(), actor, itemID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	view, err := h.itemResponse(r, item)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UploadImage accepts a multipart form with a single "file" part.
func (h *MarketplaceHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, marketplacesvc.MaxImageBytes+uploadSlack)
	if err := r.ParseMultipartForm(marketplacesvc.MaxImageBytes + uploadSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeValidation(w, r, "file")
			return
		}
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, r, "file")
		return
	}
	defer file.Close()

	image, err := h.service.UploadImage(r.Context(), actor,
		header.Filename,
		strings.TrimSpace(header.Header.Get("Content-Type")),
		file,
		header.Size,
	)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImageUploadResponse{Key: image.Key, URL: image.URL})
}

func (h *MarketplaceHandler) itemResponse(r *http.Request, item model.MarketplaceItem) (dto.ItemResponse, error) {
	urls, err := h.service.ImageURLs(r.Context(), item)
	if err != nil {
		return dto.ItemResponse{}, err
	}
	return dto.ItemResponse{
		ID:          item.ID,
		SellerID:    item.SellerID,
		Title:       item.Title,
		Description: item.Description,
		Price:       float64(item.PriceCents) / 100,
		Category:    item.Category,
		Condition:   item.Condition,
		Status:      string(item.Status),
		ImageURLs:   urls,
		SoldAt:      item.SoldAt,
		CreatedAt:   item.CreatedAt,
	}, nil
}
