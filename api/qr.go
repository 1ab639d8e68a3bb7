package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qrforge/qrforge/qr"
)

// maxTextQRBody leaves room for the largest QR payload (2953 bytes) after
// JSON escaping plus the look-and-feel fields.
const maxTextQRBody = 16 << 10

type textQRRequest struct {
	Data      string `json:"data"`
	FillColor string `json:"fill_color,omitempty"`
	BackColor string `json:"back_color,omitempty"`
	BoxSize   *int   `json:"box_size,omitempty"`
	Border    *int   `json:"border,omitempty"`
}

// options layers the request's visual settings over the server defaults.
func (req textQRRequest) options(defaults qr.Options) qr.Options {
	opts := defaults
	if req.FillColor != "" {
		opts.FillColor = req.FillColor
	}
	if req.BackColor != "" {
		opts.BackColor = req.BackColor
	}
	if req.BoxSize != nil {
		opts.BoxSize = *req.BoxSize
	}
	if req.Border != nil {
		opts.Border = *req.Border
	}
	return opts
}

func (s *Server) handleTextQR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextQRBody)

	var req textQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	png, err := s.Generator.FromText(req.Data, req.options(s.Defaults))
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}
	writePNG(w, png)
}
