package controllers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/api/validators"
	"github.com/angelmondragon/pawfinderz-backend/internal/uploads"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

const uploadField = "image"

// UploadImage accepts a multipart file under "image" or a JSON body carrying
// base64 data.
func UploadImage(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "uploads")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		data, err := readUpload(w, r, svc.MaxBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Upload(r.Context(), actor, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Image uploaded", result)
	}
}

func readUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	// Base64 inflates by a third; leave room for the envelope around it.
	r.Body = http.MaxBytesReader(w, r.Body, limit*4/3+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body uploads.Base64Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return uploads.DecodeBase64(body.Data, limit)
	}

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeTooLarge, "image exceeds the upload limit")
		}
		return nil, pkgerrors.Validation("no image provided")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	return data, nil
}
