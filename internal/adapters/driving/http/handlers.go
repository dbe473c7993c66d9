package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/swaggo/swag"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error  domain.ErrorKind `json:"error" example:"not_found"`
	Detail string           `json:"detail" example:"not found"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse reports dependency status
// @Description Readiness status of the service and its dependencies
type ReadyResponse struct {
	Status       string `json:"status" example:"ready"`
	Store        string `json:"store" example:"ok"`
	StoreBackend string `json:"store_backend" example:"mongo"`
	Cache        bool   `json:"cache"`
	LLMAvailable bool   `json:"llm_available"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// UploadResponse is returned after a file was stored
// @Description Result of a successful upload
type UploadResponse struct {
	FileID  string `json:"file_id" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	Message string `json:"message" example:"Upload successful"`
}

// FileListResponse lists stored files
// @Description Stored files
type FileListResponse struct {
	Files []*domain.FileSummary `json:"files"`
}

// MessageResponse carries a human readable confirmation
// @Description Confirmation message
type MessageResponse struct {
	Message string `json:"message" example:"File deleted successfully"`
}

// QueryRequest asks a question about a stored file
// @Description Question about a stored file
type QueryRequest struct {
	FileID string `json:"file_id" validate:"required" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	Query  string `json:"query" validate:"required" example:"What is the average amount?"`
}

// StreamQueryRequest asks a question and optionally streams the answer
// @Description Question about a stored file with optional streaming
type StreamQueryRequest struct {
	FileID string `json:"file_id" validate:"required" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	Query  string `json:"query" validate:"required" example:"Summarize the data"`
	Stream bool   `json:"stream" example:"true"`
}

// QueryResponse carries a complete answer
// @Description Complete answer
type QueryResponse struct {
	Response string `json:"response" example:"The average amount is 20."`
}

// UploadPathRequest names a CSV file on the server
// @Description Upload from a server-side path
type UploadPathRequest struct {
	SourceType string `json:"source_type" validate:"required" example:"project"`
	FilePath   string `json:"file_path" example:"data/sales.csv"`
}

var validate = newValidator()

// newValidator reports field errors by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorStatus maps every error kind to its HTTP status
var errorStatus = map[domain.ErrorKind]int{
	domain.KindBadRequest:   http.StatusBadRequest,
	domain.KindParse:        http.StatusBadRequest,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindUpstream:     http.StatusInternalServerError,
	domain.KindStore:        http.StatusInternalServerError,
	domain.KindInternal:     http.StatusInternalServerError,
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks the document store and reports whether questions can be answered
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Store: "ok"}
	if s.services != nil {
		cfg := s.services.Config()
		resp.StoreBackend = cfg.StoreBackend
		resp.Cache = cfg.CacheEnabled
		resp.LLMAvailable = cfg.LLMAvailable()
	}

	status := http.StatusOK
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			resp.Status = "not_ready"
			resp.Store = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// handleSwaggerDoc serves the registered OpenAPI document
func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, domain.KindNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// File endpoints

// handleUpload godoc
// @Summary      Upload a CSV file
// @Description  Accepts a multipart "file" field, or a JSON body naming a file on the server
// @Tags         Files
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        file     formData  file               false  "CSV file"
// @Param        request  body      UploadPathRequest  false  "Server-side source"
// @Success      200      {object}  UploadResponse
// @Failure      400      {object}  ErrorResponse  "Wrong suffix, malformed CSV or invalid body"
// @Failure      404      {object}  ErrorResponse  "Source path does not exist"
// @Failure      500      {object}  ErrorResponse  "Store failure"
// @Router       /upload [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		id  string
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		id, err = s.uploadMultipart(w, r)
	case "application/json":
		var req UploadPathRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		id, err = s.fileService.UploadFromPath(r.Context(), domain.UploadSource{
			SourceType: req.SourceType,
			FilePath:   req.FilePath,
		})
	default:
		writeError(w, http.StatusBadRequest, domain.KindBadRequest,
			"expected multipart/form-data with a file field or a JSON body")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{FileID: id, Message: "Upload successful"})
}

// uploadMultipart streams the "file" part of a multipart body into the file service
func (s *Server) uploadMultipart(w http.ResponseWriter, r *http.Request) (string, error) {
	// Allow room for the multipart envelope around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)

	reader, err := r.MultipartReader()
	if err != nil {
		return "", fmt.Errorf("%w: invalid multipart body: %v", domain.ErrBadRequest, err)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: missing file field", domain.ErrBadRequest)
		}
		if err != nil {
			return "", fmt.Errorf("%w: invalid multipart body: %v", domain.ErrBadRequest, err)
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		id, err := s.fileService.Upload(r.Context(), part.FileName(), part)
		_ = part.Close()

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrBadRequest, s.maxUpload)
		}
		return id, err
	}
}

// handleListFiles godoc
// @Summary      List files
// @Description  Returns the ID and name of every stored file
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  FileListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.fileService.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// handleGetFile godoc
// @Summary      Get a file
// @Description  Returns a stored file with its metadata and summary
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        file_id  path      string  true  "File ID"
// @Success      200      {object}  domain.FileDocument
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /file/{file_id} [get]
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	doc, err := s.fileService.Get(r.Context(), r.PathValue("file_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteFile godoc
// @Summary      Delete a file
// @Description  Permanently removes a stored file
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        file_id  path      string  true  "File ID"
// @Success      200      {object}  MessageResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /file/{file_id} [delete]
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.fileService.Delete(r.Context(), r.PathValue("file_id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "File deleted successfully"})
}

// Query endpoints

// handleQuery godoc
// @Summary      Ask a question
// @Description  Answers a natural-language question about a stored file
// @Tags         Query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      QueryRequest  true  "Question"
// @Success      200      {object}  QueryResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse  "Completion service failure"
// @Router       /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	answer, err := s.queryService.Answer(r.Context(), req.FileID, req.Query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Response: answer})
}

// handleQueryStream godoc
// @Summary      Ask a question with a streamed answer
// @Description  With stream=true the answer is written as plain text chunks as they arrive
// @Tags         Query
// @Accept       json
// @Produce      plain
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      StreamQueryRequest  true  "Question"
// @Success      200      {string}  string  "Answer text"
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse  "Completion service failure"
// @Router       /query/stream [post]
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	var req StreamQueryRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !req.Stream {
		answer, err := s.queryService.Answer(r.Context(), req.FileID, req.Query)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, QueryResponse{Response: answer})
		return
	}

	// The stream is bound to the request context: a client disconnect aborts the upstream call
	stream, err := s.queryService.AnswerStream(r.Context(), req.FileID, req.Query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	defer stream.Close()

	// Failures before the first chunk still get a JSON error response
	chunk, err := stream.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeDomainError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	for err == nil {
		if chunk != "" {
			if _, werr := io.WriteString(w, chunk); werr != nil {
				s.logger.Info("stream client went away", "file_id", req.FileID, "error", werr)
				return
			}
			if ferr := rc.Flush(); ferr != nil {
				return
			}
		}
		chunk, err = stream.Next()
	}

	if !errors.Is(err, io.EOF) {
		// Headers are already sent, so the body is simply cut short
		s.logger.Warn("stream aborted", "file_id", req.FileID, "error", err)
	}
}

// Helpers

// decodeJSON decodes and validates a request body, writing a 400 on failure
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindBadRequest, validationDetail(err))
		return false
	}
	return true
}

// validationDetail renders validator errors as "file_id is required, query is required"
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fe.Field()+" is required")
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, ", ")
}

// writeDomainError maps err to a status by its kind and writes the error body
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, ok := errorStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", kind, "error", err)
	}

	writeError(w, status, kind, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind domain.ErrorKind, detail string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Detail: detail})
}
