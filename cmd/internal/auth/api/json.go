package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// errorBody is the envelope for every non-2xx account response:
// {"error":{"code":"user_exists","message":"User already exists"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errTrailingData = errors.New("trailing data after request object")

func respond(w http.ResponseWriter, status int, v any) {
	hdr := w.Header()
	hdr.Set("Content-Type", "application/json; charset=utf-8")
	hdr.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respond(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// readRequest decodes exactly one JSON object into dst, capped at
// cfg.MaxBodyBytes and strict about unknown fields. On failure it has already
// written the 400 response and returns false.
func (h *Handler) readRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes), dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Info("auth.request.too_large", "path", r.URL.Path, "limit", tooLarge.Limit)
		}
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return false
	}
	return true
}

func decodeStrict(body io.ReadCloser, dst any) error {
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return errTrailingData
	}
	return nil
}
