package api

import (
	"bufio"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/http/response"
	"github.com/gatherly/gatherly-server/internal/service"
)

const (
	// maxFieldFormSize caps a field form submission, file included.
	maxFieldFormSize = 50 << 20
	// multipartMemory is how much of a multipart form is buffered before spilling to disk.
	multipartMemory = 8 << 20
	sniffLength     = 512
)

// handleCommunityField updates one community field from a form submission.
// POST /api/v1/communities/{id}/fields/{key}.
func (s *Server) handleCommunityField(w http.ResponseWriter, r *http.Request) {
	if _, err := service.ActingUser(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	key := chi.URLParam(r, "key")

	in, cleanup, err := readFieldInput(w, r, key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer cleanup()

	c, err := s.services.Communities.UpdateField(r.Context(), chi.URLParam(r, "id"), key, in)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, c, s.logger)
}

// handleEventField updates one event field from a form submission.
// POST /api/v1/events/{id}/fields/{key}.
func (s *Server) handleEventField(w http.ResponseWriter, r *http.Request) {
	if _, err := service.ActingUser(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	key := chi.URLParam(r, "key")

	in, cleanup, err := readFieldInput(w, r, key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer cleanup()

	e, err := s.services.Events.UpdateField(r.Context(), chi.URLParam(r, "id"), key, in)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, e, s.logger)
}

// handleUserField updates one field of the signed-in user's profile.
// POST /api/v1/users/me/fields/{key}.
func (s *Server) handleUserField(w http.ResponseWriter, r *http.Request) {
	if _, err := service.ActingUser(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	key := chi.URLParam(r, "key")

	in, cleanup, err := readFieldInput(w, r, key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer cleanup()

	if in.File != nil {
		response.BadRequest(w, "Profile fields do not accept files", s.logger)
		return
	}

	u, err := s.services.Users.Edit(r.Context(), key, in.Value)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, u, s.logger)
}

// readFieldInput extracts the submitted value of key from an urlencoded or
// multipart form. A multipart file part named key wins over a plain value.
// cleanup releases the temporary files of a multipart form.
func readFieldInput(w http.ResponseWriter, r *http.Request, key string) (service.FieldInput, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxFieldFormSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return service.FieldInput{}, noop, formError(err)
		}
		cleanup := func() {
			//nolint:errcheck // temporary files only
			_ = r.MultipartForm.RemoveAll()
		}

		file, header, err := r.FormFile(key)
		switch {
		case err == nil:
			body := bufio.NewReaderSize(file, sniffLength)
			contentType := header.Header.Get("Content-Type")
			if contentType == "" || contentType == "application/octet-stream" {
				head, _ := body.Peek(sniffLength)
				contentType = http.DetectContentType(head)
			}
			in := service.FieldInput{
				File: &service.Upload{ContentType: contentType, Body: body},
			}
			return in, func() {
				file.Close()
				cleanup()
			}, nil
		case errors.Is(err, http.ErrMissingFile):
			return service.FieldInput{Value: r.FormValue(key)}, cleanup, nil
		default:
			cleanup()
			return service.FieldInput{}, noop, formError(err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return service.FieldInput{}, noop, formError(err)
		}
		return service.FieldInput{Value: r.PostFormValue(key)}, noop, nil
	default:
		return service.FieldInput{}, noop, domainerrors.Validation("Expected a form submission")
	}
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domainerrors.Validation("Form is too large. Maximum size is 50MB").WithCause(err)
	}
	return domainerrors.Validation("Failed to parse form data").WithCause(err)
}
