package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sagarc03/filekeep"
)

const maxJSONBody = 1 << 20

type presignedURLRequest struct {
	FileName string `json:"fileName" validate:"required,filename"`
	FileType string `json:"fileType" validate:"required"`
}

type saveMetadataRequest struct {
	FilePath string `json:"filePath" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return filekeep.IsValidFileName(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", filekeep.ErrInvalidInput)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", filekeep.ErrInvalidInput, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "filename":
			msgs = append(msgs, fe.Field()+" can only contain alphanumeric characters, spaces, dots, underscores, and hyphens")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id must be a UUID", filekeep.ErrInvalidInput)
	}
	return id, nil
}

func (h *Handler) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.ListBuckets(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	if buckets == nil {
		buckets = []filekeep.BucketInfo{}
	}

	_ = WriteJSON(w, http.StatusOK, buckets)
}

func (h *Handler) handlePresignedURL(w http.ResponseWriter, r *http.Request) {
	var req presignedURLRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}

	upload, err := h.service.GetPresignedUploadURL(r.Context(), req.FileName, req.FileType)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, upload)
}

func (h *Handler) handleSaveMetadata(w http.ResponseWriter, r *http.Request) {
	var req saveMetadataRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}

	record, err := h.service.SaveFileMetadata(detach(r), req.FilePath, req.FileName, req.MimeType)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	query := filekeep.ListQuery{
		PathPrefix: r.URL.Query().Get("prefix"),
		Limit:      100,
		Cursor:     r.URL.Query().Get("cursor"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_input", "limit must be a number")
			return
		}
		query.Limit = max(1, min(1000, parsed))
	}

	result, err := h.service.ListFiles(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}
	if result.Items == nil {
		result.Items = []filekeep.FileRecord{}
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	result, err := h.service.GetFile(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := h.service.DeleteFile(detach(r), id); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
