package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

// handleUpload stores a posted recording for a later URL turn. The part is
// read as a stream so the extension is checked before anything is buffered
// or written.
//
// @Summary     Upload a recording
// @Description Stores an audio file and returns a URL that can be passed to /api/url_to_response.
// @Description Only the configured extension is accepted.
// @Tags        files
// @Accept      mpfd
// @Produce     json
// @Param       file  formData  file  true  "Recording"
// @Success     200  {object}  uploadResponse
// @Failure     400  {object}  errorResponse  "No file part"
// @Failure     415  {object}  errorResponse  "Extension not allowed"
// @Router      /upload-audio [post]
func (t *Transport) handleUpload(w http.ResponseWriter, r *http.Request) {
	if t.opts.Uploads == nil {
		t.writeError(w, r, errorsx.New(errorsx.ReasonUnknown, "uploads are not configured"))
		return
	}
	mr, err := r.MultipartReader()
	if err != nil {
		t.writeError(w, r, errorsx.Wrap(err, errorsx.ReasonBadRequest))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.writeError(w, r, errorsx.Wrap(err, errorsx.ReasonBadRequest))
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		ext := strings.ToLower(filepath.Ext(part.FileName()))
		if part.FileName() == "" {
			part.Close()
			t.writeError(w, r, errorsx.New(errorsx.ReasonBadRequest, "no selected file"))
			return
		}
		if ext != strings.ToLower(t.opts.AllowedExtension) {
			part.Close()
			t.writeError(w, r, errorsx.New(errorsx.ReasonUnsupportedFormat,
				fmt.Sprintf("only %s files are allowed", t.opts.AllowedExtension)))
			return
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		if len(data) == 0 {
			t.writeError(w, r, errorsx.New(errorsx.ReasonBadRequest, "uploaded file is empty"))
			return
		}
		name, err := t.opts.Uploads.Save(data, ext)
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		t.logger.Info("upload stored", "name", name, "bytes", len(data))
		writeJSON(w, http.StatusOK, uploadResponse{
			Filename: name,
			URL:      t.publicURL("/uploads/" + name),
			Message:  "File uploaded successfully",
		})
		return
	}

	t.writeError(w, r, errorsx.New(errorsx.ReasonBadRequest, "no file part"))
}

// serveFrom serves a stored file by name.
//
// @Summary     Fetch a stored audio file
// @Description /audio/{name} serves synthesized speech; /uploads/{name} serves uploaded recordings.
// @Tags        files
// @Produce     octet-stream
// @Param       name  path  string  true  "File name"
// @Success     200  {file}    file
// @Failure     404  {object}  errorResponse
// @Router      /audio/{name} [get]
// @Router      /uploads/{name} [get]
func (t *Transport) serveFrom(store *audiostore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			t.writeError(w, r, errorsx.New(errorsx.ReasonNotFound, "file not found"))
			return
		}
		path, err := store.Path(r.PathValue("name"))
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		http.ServeFile(w, r, path)
	}
}
