package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    mterrors.Code `json:"code"`
	Message string        `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code mterrors.Code) int {
	switch code {
	case mterrors.ErrCodeNotFound, mterrors.ErrCodeNodeNotFound, mterrors.ErrCodeParentNotFound:
		return http.StatusNotFound
	case mterrors.ErrCodeDuplicateID, mterrors.ErrCodeRootAlreadyExists:
		return http.StatusConflict
	case mterrors.ErrCodeForbiddenAdd, mterrors.ErrCodeOverDepth, mterrors.ErrCodeNotEditable:
		return http.StatusForbidden
	case mterrors.ErrCodeInvalidInput, mterrors.ErrCodeInvalidFormat, mterrors.ErrCodeInvalidPath,
		mterrors.ErrCodeInvalidMove, mterrors.ErrCodeCannotRemoveRoot, mterrors.ErrCodeCannotInsertAtRoot,
		mterrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case mterrors.ErrCodeNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := mterrors.GetCode(err)
	switch {
	case code != "":
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = mterrors.ErrCodeNetwork
	default:
		code = mterrors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := mterrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body into v. An empty body leaves v as is.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return mterrors.Wrap(mterrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
