package handler

import (
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"festapp/chat_backend/internal/pkg/auth"
	"festapp/chat_backend/internal/pkg/httputils"
	"festapp/chat_backend/internal/pkg/urlutil"
	"festapp/chat_backend/internal/service"

	"github.com/gorilla/mux"
)

// Максимальный размер multipart-запроса
const maxUploadSize = 10 << 20 // 10MB

type UploadHandler struct {
	fileService *service.FileService
	baseURL     string
}

func NewUploadHandler(fileService *service.FileService, baseURL string) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
		baseURL:     baseURL,
	}
}

func (h *UploadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/upload/single", h.uploadSingle).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/upload/files/{filename}", h.serveFile).Methods("GET", "OPTIONS")
}

// allowedExtension принимаем только изображения и документы
func allowedExtension(filename string) bool {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp",
		".pdf", ".doc", ".docx", ".txt", ".rtf":
		return true
	}
	return false
}

// @Summary Upload file
// @Description Upload a single image or document, returns its absolute URL
// @ID upload-single
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param file formData file true "File to upload"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /upload/single [post]
func (h *UploadHandler) uploadSingle(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.FromRequest(r); err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "Invalid authentication token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !allowedExtension(header.Filename) {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid file type. Only images and documents are allowed.")
		return
	}

	uploaded, err := h.fileService.Upload(r.Context(), file, header.Filename, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		log.Printf("upload failed: %v", err)
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	uploaded.FileURL = urlutil.ResolveFileURL(h.baseURL, uploaded.FileURL)
	httputils.ResponseSuccess(w, http.StatusOK, uploaded)
}

// @Summary Serve file
// @Description Stream a previously uploaded file by its stored name
// @ID serve-file
// @Tags upload
// @Param filename path string true "Stored file name"
// @Success 200
// @Failure 404 {object} response.ErrorResponse
// @Router /upload/files/{filename} [get]
func (h *UploadHandler) serveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	body, contentType, err := h.fileService.Download(r.Context(), filename)
	if err != nil {
		httputils.ResponseError(w, http.StatusNotFound, "File not found")
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, body); err != nil {
		log.Printf("failed to stream file %s: %v", filename, err)
	}
}
