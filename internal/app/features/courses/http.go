// internal/app/features/courses/http.go
package courses

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
)

const (
	maxUploadMemory = 32 << 20
	maxJSONBody     = 1 << 20
	thumbnailField  = "thumbnailImage"
)

// HandleCreateCourse accepts the multipart course form.
func (h *Handler) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse course form", err, "Invalid form submission")
		return
	}
	thumb, err := uploadedFile(r, thumbnailField)
	if err != nil {
		h.ErrLog.Respond(w, r, "read thumbnail", err)
		return
	}

	in := CreateInput{
		Name:             r.PostFormValue("courseName"),
		Description:      r.PostFormValue("courseDescription"),
		WhatYouWillLearn: r.PostFormValue("whatYouWillLearn"),
		CategoryID:       r.PostFormValue("category"),
		Price:            r.PostFormValue("price"),
		Status:           r.PostFormValue("status"),
		Tags:             listField(r, "tag"),
		Instructions:     listField(r, "instructions"),
		Thumbnail:        thumb,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "course create")
	defer cancel()

	c, err := h.Manager.Create(ctx, id.ID, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create course", err)
		return
	}
	h.Audit.CourseCreated(r.Context(), r, id.ID, c.ID, c.Name)
	uierrors.OK(w, http.StatusOK, "Course Created Successfully", c)
}

// HandleEditCourse applies the fields present in the multipart form or JSON
// body. A new thumbnail can only arrive as a multipart file.
func (h *Handler) HandleEditCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var in EditInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var err error
		if in, err = editFromJSON(r); err != nil {
			h.ErrLog.Respond(w, r, "decode course edit", err)
			return
		}
	} else {
		if in, ok = h.editFromForm(w, r); !ok {
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "course edit")
	defer cancel()

	view, err := h.Manager.Edit(ctx, id.ID, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "edit course", err)
		return
	}
	h.Audit.CourseUpdated(r.Context(), r, id.ID, in.CourseID)
	uierrors.OK(w, http.StatusOK, "Course updated successfully", view)
}

func (h *Handler) editFromForm(w http.ResponseWriter, r *http.Request) (EditInput, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && err != http.ErrNotMultipart {
		h.ErrLog.LogBadRequest(w, r, "parse course form", err, "Invalid form submission")
		return EditInput{}, false
	}
	thumb, err := uploadedFile(r, thumbnailField)
	if err != nil {
		h.ErrLog.Respond(w, r, "read thumbnail", err)
		return EditInput{}, false
	}

	return EditInput{
		CourseID:         r.PostFormValue("courseId"),
		Name:             optional(r, "courseName"),
		Description:      optional(r, "courseDescription"),
		WhatYouWillLearn: optional(r, "whatYouWillLearn"),
		Price:            optional(r, "price"),
		CategoryID:       optional(r, "category"),
		Status:           optional(r, "status"),
		Tags:             listField(r, "tag"),
		Instructions:     listField(r, "instructions"),
		Thumbnail:        thumb,
	}, true
}

// editFromJSON reads an edit sent as JSON. Keys match the form fields; a
// price may be a number and tag/instructions may be arrays or JSON strings.
func editFromJSON(r *http.Request) (EditInput, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&body); err != nil {
		return EditInput{}, apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}
	in := EditInput{
		Name:             jsonText(body, "courseName"),
		Description:      jsonText(body, "courseDescription"),
		WhatYouWillLearn: jsonText(body, "whatYouWillLearn"),
		Price:            jsonText(body, "price"),
		CategoryID:       jsonText(body, "category"),
		Status:           jsonText(body, "status"),
		Tags:             jsonList(body, "tag"),
		Instructions:     jsonList(body, "instructions"),
	}
	if cid := jsonText(body, "courseId"); cid != nil {
		in.CourseID = *cid
	}
	return in, nil
}

// jsonText returns a string value, or the literal text of a number or
// boolean. Absent and null keys are nil.
func jsonText(body map[string]json.RawMessage, key string) *string {
	raw, ok := body[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = strings.TrimSpace(string(raw))
	}
	return &s
}

func jsonList(body map[string]json.RawMessage, key string) ListField {
	raw, ok := body[key]
	if !ok || string(raw) == "null" {
		return ListField{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ListFromJSON(s)
	}
	return ListFromJSON(string(raw))
}

// HandleListPublished serves the public catalog.
func (h *Handler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list published courses")
	defer cancel()

	cs, err := h.Manager.ListPublished(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list published courses", err, "Can't Fetch Course Data")
		return
	}
	uierrors.OK(w, http.StatusOK, "", cs)
}

// HandleGetDetails serves the public course page.
func (h *Handler) HandleGetDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "course details")
	defer cancel()

	d, err := h.Manager.GetDetails(ctx, courseIDFrom(r))
	if err != nil {
		h.ErrLog.Respond(w, r, "course details", err)
		return
	}
	uierrors.OK(w, http.StatusOK, "", d)
}

// HandleGetFullDetails serves the course player: video URLs and progress.
func (h *Handler) HandleGetFullDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "full course details")
	defer cancel()

	d, err := h.Manager.GetFullDetails(ctx, courseIDFrom(r), id.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "full course details", err)
		return
	}
	uierrors.OK(w, http.StatusOK, "", d)
}

// HandleListInstructorCourses lists the caller's own courses.
func (h *Handler) HandleListInstructorCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list instructor courses")
	defer cancel()

	cs, err := h.Manager.ListByInstructor(ctx, id.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list instructor courses", err, "Failed to retrieve instructor courses")
		return
	}
	uierrors.OK(w, http.StatusOK, "", cs)
}

// HandleDeleteCourse deletes one of the caller's courses.
func (h *Handler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "course delete")
	defer cancel()

	courseID := courseIDFrom(r)
	if err := h.Manager.Delete(ctx, id.ID, courseID); err != nil {
		h.ErrLog.Respond(w, r, "delete course", err)
		return
	}
	h.Audit.CourseDeleted(r.Context(), r, id.ID, courseID)
	uierrors.OK(w, http.StatusOK, "Course deleted successfully", nil)
}

// courseIDFrom reads courseId from a JSON body, a form body or the query.
func courseIDFrom(r *http.Request) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			CourseID string `json:"courseId"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&body); err == nil && body.CourseID != "" {
			return body.CourseID
		}
	}
	return r.FormValue("courseId")
}

// optional returns the form value for key, or nil when the key was not sent.
func optional(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// listField reads a list sent as one JSON array string ("tag") or as
// repeated keys ("tag" twice, "tag[]").
func listField(r *http.Request, key string) ListField {
	if vs := r.PostForm[key]; len(vs) == 1 {
		return ListFromJSON(vs[0])
	} else if len(vs) > 1 {
		return ListOf(vs...)
	}
	if vs := r.PostForm[key+"[]"]; len(vs) > 0 {
		return ListOf(vs...)
	}
	return ListField{}
}

// uploadedFile maps the named multipart file onto a media handle. A missing
// file is (nil, nil); an unreadable one is a validation error.
func uploadedFile(r *http.Request, key string) (media.FileHandle, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[key]) == 0 {
		return nil, nil
	}
	h, err := media.FromMultipart(r.MultipartForm.File[key][0])
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "Invalid image file format", err)
	}
	return h, nil
}
