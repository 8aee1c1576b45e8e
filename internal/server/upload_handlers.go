package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"sheetdrop/internal/errs"
)

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.render(w, http.StatusOK, "upload.html",
		pageData{Flash: popFlash(w, r), Username: claims.Username})
}

// handleUpload accepts a single multipart file field named "file".
// The session guard has already run, so a request reaching here is
// authenticated. The body is streamed part by part; the file part goes
// straight to the storage backend without buffering.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	filePart, err := firstFilePart(r)
	if err != nil {
		msg, status := uploadNotice(err)
		s.renderUpload(w, status, claims.Username, msg)
		return
	}
	defer func() { _ = filePart.Close() }()

	stored, err := s.uploads.Accept(r.Context(), filePart.FileName(), filePart,
		-1, filePart.Header.Get("Content-Type"))
	if err != nil {
		msg, status := uploadNotice(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("upload",
				zap.String("rid", RequestIDFromContext(r.Context())),
				zap.String("username", claims.Username),
				zap.Error(err))
		}
		s.renderUpload(w, status, claims.Username, msg)
		return
	}

	s.logger.Info("file uploaded",
		zap.String("rid", RequestIDFromContext(r.Context())),
		zap.String("username", claims.Username),
		zap.String("stored_name", stored))
	setFlash(w, "success", fmt.Sprintf("File '%s' uploaded successfully!", stored))
	http.Redirect(w, r, "/upload", http.StatusFound)
}

// firstFilePart walks the multipart body until it finds the "file"
// field. A missing part and a malformed body both read as ErrNoFilePart.
func firstFilePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errs.ErrNoFilePart
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errs.ErrNoFilePart
		}
		if err != nil {
			return nil, errs.ErrNoFilePart
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		return part, nil
	}
}

func (s *Server) renderUpload(w http.ResponseWriter, status int, username, msg string) {
	s.render(w, status, "upload.html",
		pageData{Flash: &Flash{Category: "error", Message: msg}, Username: username})
}

func uploadNotice(err error) (string, int) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errs.ErrNoFilePart):
		return "No file part in the request.", http.StatusBadRequest
	case errors.Is(err, errs.ErrEmptyFilename):
		return "No selected file.", http.StatusBadRequest
	case errors.Is(err, errs.ErrDisallowedExtension):
		return "Invalid file type. Please upload .xls or .xlsx files.", http.StatusBadRequest
	case errors.As(err, &maxErr):
		return "File is too large.", http.StatusRequestEntityTooLarge
	default:
		return "An unknown error occurred.", http.StatusInternalServerError
	}
}
