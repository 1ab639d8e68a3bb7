package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/qrforge/qrforge/qr"
	"github.com/qrforge/qrforge/upload"
)

// multipartMemory is how much of a form is buffered in memory before the
// rest spills to temp files.
const multipartMemory = 32 << 20

type fileQRResponse struct {
	QRPNG  string         `json:"qr_png"`
	Upload upload.Outcome `json:"upload"`
}

// readUpload parses a multipart form capped at MaxUploadBytes and returns the
// "file" part.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", false
	}
	return data, header.Filename, true
}

// formOptions reads optional fill_color, back_color, box_size and border
// form fields over the server defaults.
func (s *Server) formOptions(r *http.Request) (qr.Options, error) {
	opts := s.Defaults
	if v := r.FormValue("fill_color"); v != "" {
		opts.FillColor = v
	}
	if v := r.FormValue("back_color"); v != "" {
		opts.BackColor = v
	}
	if v := r.FormValue("box_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &qr.ValidationError{Reason: "box_size must be an integer"}
		}
		opts.BoxSize = n
	}
	if v := r.FormValue("border"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &qr.ValidationError{Reason: "border must be an integer"}
		}
		opts.Border = n
	}
	return opts, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file cannot be empty")
		return
	}

	outcome := s.Generator.Upload(r.Context(), data, filename)
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, outcome)
}

func (s *Server) handleFileQR(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	opts, err := s.formOptions(r)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	png, outcome, err := s.Generator.FromFile(r.Context(), data, filename, opts)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fileQRResponse{
		QRPNG:  base64.StdEncoding.EncodeToString(png),
		Upload: outcome,
	})
}
