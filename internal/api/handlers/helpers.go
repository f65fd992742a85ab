package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// maxBodyBytes bounds request bodies; formData payloads stay well below it.
const maxBodyBytes = 1 << 20

// writeErr writes err as an AppError. Anything that is not one becomes a
// generic internal error and is logged.
func writeErr(w http.ResponseWriter, log *logger.Logger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		log.ErrorWithErr(err, "Unhandled error")
		appErr = errors.Internal("Internal server error", err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError && appErr.Code != errors.ErrCodeFatal {
		log.ErrorWithErr(err, appErr.Message)
	}
	utils.WriteError(w, appErr)
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validator, dst interface{}) *errors.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.BadRequest("Request body is required")
		}
		return errors.BadRequest("Invalid request body")
	}
	return v.Check(dst)
}
