package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"cvforge/internal/editor"
	cvforgeErrors "cvforge/internal/errors"
	"cvforge/internal/observability"
	"cvforge/internal/render"
	"cvforge/internal/resume"
	"cvforge/internal/score"
)

type documentResponse struct {
	Document resume.Document `json:"document"`
	Score    int             `json:"score"`
}

func (s *Server) documentResponse() documentResponse {
	return documentResponse{Document: s.Session.Document(), Score: s.Session.Score()}
}

// getDocumentHandler returns the current document snapshot
func (s *Server) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.documentResponse())
}

// putDocumentHandler replaces the whole document. The replacement is
// shape-healed before it becomes the active snapshot.
func (s *Server) putDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var doc resume.Document
	if !parseJSONRequest(w, r, &doc) {
		return
	}

	s.Session.Replace(doc)
	writeJSON(w, http.StatusOK, s.documentResponse())
}

// addItemHandler appends a new item to a repeatable section. An item
// arriving without an id gets one assigned here.
func (s *Server) addItemHandler(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")

	var raw json.RawMessage
	if !parseJSONRequest(w, r, &raw) {
		return
	}
	raw, err := ensureItemID(raw)
	if err != nil {
		writeErrorResponse(w, "Invalid item", err.Error(), http.StatusBadRequest)
		return
	}

	err = s.applySectionEdit(section, func(op sectionOps) error {
		return op.add(s, raw)
	})
	s.writeEditResult(w, err)
}

// updateItemHandler replaces a single field of one item. Unknown ids
// are a no-op; unknown fields are rejected.
func (s *Server) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	id := r.PathValue("id")

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if !parseJSONRequest(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeErrorResponse(w, "Invalid request", "field is required", http.StatusBadRequest)
		return
	}

	err := s.applySectionEdit(section, func(op sectionOps) error {
		return op.update(s, id, req.Field, req.Value)
	})
	s.writeEditResult(w, err)
}

// removeItemHandler drops one item; removing a missing id succeeds
func (s *Server) removeItemHandler(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	id := r.PathValue("id")

	err := s.applySectionEdit(section, func(op sectionOps) error {
		return op.remove(s, id)
	})
	s.writeEditResult(w, err)
}

// sectionOps adapts the typed section editors to the string-keyed
// HTTP surface.
type sectionOps struct {
	add    func(*Server, json.RawMessage) error
	update func(*Server, string, string, string) error
	remove func(*Server, string) error
}

func sectionOpsFor[T any](sec editor.Section[T]) sectionOps {
	return sectionOps{
		add: func(s *Server, raw json.RawMessage) error {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				return cvforgeErrors.NewValidationError(cvforgeErrors.ErrCodeInvalidRequest,
					fmt.Sprintf("invalid %s item payload", sec.Name()), err)
			}
			return s.Session.Apply(func(doc resume.Document) (resume.Document, error) {
				return editor.AddItem(doc, sec, item)
			})
		},
		update: func(s *Server, id, field, value string) error {
			return s.Session.Apply(func(doc resume.Document) (resume.Document, error) {
				return editor.UpdateItemField(doc, sec, id, field, value)
			})
		},
		remove: func(s *Server, id string) error {
			return s.Session.Apply(func(doc resume.Document) (resume.Document, error) {
				return editor.RemoveItem(doc, sec, id), nil
			})
		},
	}
}

var sectionRegistry = map[string]sectionOps{
	editor.Experiences.Name(): sectionOpsFor(editor.Experiences),
	editor.Educations.Name():  sectionOpsFor(editor.Educations),
	editor.Skills.Name():      sectionOpsFor(editor.Skills),
	editor.Languages.Name():   sectionOpsFor(editor.Languages),
	editor.Courses.Name():     sectionOpsFor(editor.Courses),
	editor.Interests.Name():   sectionOpsFor(editor.Interests),
	editor.References.Name():  sectionOpsFor(editor.References),
}

func (s *Server) applySectionEdit(section string, apply func(sectionOps) error) error {
	op, ok := sectionRegistry[section]
	if !ok {
		return cvforgeErrors.NewValidationError(cvforgeErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown section %q", section), nil)
	}
	return apply(op)
}

func (s *Server) writeEditResult(w http.ResponseWriter, err error) {
	if err != nil {
		status := http.StatusBadRequest
		var appErr *cvforgeErrors.AppError
		if errors.As(err, &appErr) && appErr.Code == cvforgeErrors.ErrCodeDuplicateItemID {
			status = http.StatusConflict
		}
		writeErrorResponse(w, "Edit rejected", err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, s.documentResponse())
}

// ensureItemID assigns a fresh id to an incoming item that lacks one
func ensureItemID(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if id, _ := fields["id"].(string); id == "" {
		fields["id"] = resume.NewItemID()
	}
	return json.Marshal(fields)
}

// attachPhotoHandler accepts a photo as multipart form data (field
// "photo") or as a raw request body with an image content type.
func (s *Server) attachPhotoHandler(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := readPhotoUpload(r)
	if err != nil {
		writeErrorResponse(w, "Invalid photo upload", err.Error(), http.StatusBadRequest)
		return
	}

	err = s.Session.Apply(func(doc resume.Document) (resume.Document, error) {
		return editor.AttachPhoto(doc, data, mimeType)
	})
	if err != nil {
		status := http.StatusBadRequest
		var appErr *cvforgeErrors.AppError
		if errors.As(err, &appErr) && appErr.Code == cvforgeErrors.ErrCodePhotoTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		writeErrorResponse(w, "Photo rejected", err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, s.documentResponse())
}

// removePhotoHandler clears the photo
func (s *Server) removePhotoHandler(w http.ResponseWriter, r *http.Request) {
	err := s.Session.Apply(func(doc resume.Document) (resume.Document, error) {
		return editor.RemovePhoto(doc), nil
	})
	if err != nil {
		writeErrorResponse(w, "Edit rejected", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.documentResponse())
}

func readPhotoUpload(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")

	if f, header, err := formFile(r, "photo"); err == nil {
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, editor.MaxPhotoBytes+1))
		if err != nil {
			return nil, "", err
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, editor.MaxPhotoBytes+1))
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(editor.MaxPhotoBytes + 1); err != nil {
		return nil, nil, err
	}
	return r.FormFile(field)
}

// scoreHandler returns the completeness breakdown of the current
// snapshot.
func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, score.Breakdown(s.Session.Document()))
}

// renderHandler projects the current document into the layout tree.
// An optional template query parameter overrides the stored choice for
// this response only.
func (s *Server) renderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := s.Session.Document()
		if t := r.URL.Query().Get("template"); t != "" {
			doc = editor.SetTemplate(doc, resume.Template(t))
		}
		lang := s.language(r.URL.Query().Get("lang"))

		tree := render.Project(doc, lang)

		if om != nil {
			om.GetMetrics().RecordBusinessMetric(r.Context(), "document_rendered", true, om)
		}
		writeJSON(w, http.StatusOK, tree)
	}
}

// renderCoverLetterHandler projects the fixed cover letter layout
func (s *Server) renderCoverLetterHandler(w http.ResponseWriter, r *http.Request) {
	lang := s.language(r.URL.Query().Get("lang"))
	view := render.ProjectCoverLetter(s.Session.Document(), lang, time.Now())
	writeJSON(w, http.StatusOK, view)
}
