package server

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wbsgen/pkg/buildinfo"
	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/store"
)

// formatTreeSVG is the render path segment for the tree diagram as SVG.
const formatTreeSVG = "tree"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

// layoutRequest is the body of POST /api/layout. Config is a TOML document
// in the config file format.
type layoutRequest struct {
	Name    string   `json:"name"`
	Lines   []string `json:"lines"`
	Config  string   `json:"config,omitempty"`
	Orphans string   `json:"orphans,omitempty"`
}

type layoutResponse struct {
	Name     string              `json:"name"`
	Items    []outline.Item      `json:"items"`
	Geometry []layout.Geometry   `json:"geometry"`
	Report   outline.BuildReport `json:"report"`
	Overflow layout.Overflow     `json:"overflow"`
	Warnings []string            `json:"warnings"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if req.Name == "" {
		req.Name = pipeline.DefaultName
	}
	if err := errors.ValidateName(req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.settings(req.Config, req.Orphans)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, _, err := pipeline.Items(req.Lines)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lay, err := s.runner.Layout(r.Context(), items, s.pipelineOptions(req.Name, settings))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Name:     req.Name,
		Items:    lay.Items,
		Geometry: lay.Geometry,
		Report:   lay.Report,
		Overflow: lay.Overflow,
		Warnings: nonNil(pipeline.Warnings(lay)),
	})
}

// uploadResponse is the stored document plus the warnings of its layout.
type uploadResponse struct {
	*store.Document
	Warnings []string `json:"warnings"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing file field"))
		return
	}
	defer file.Close()

	if _, err := errors.ValidateUploadFilename(header.Filename); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := r.FormValue("name")
	if name == "" {
		name = pipeline.NameFromFile(header.Filename)
	}
	if err := errors.ValidateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.settings(r.FormValue("config"), r.FormValue("orphans"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.pipelineOptions(name, settings)
	lines, _, err := s.runner.LinesWithCacheInfo(r.Context(), header.Filename, file, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, _, err := pipeline.Items(lines)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lay, err := s.runner.Layout(r.Context(), items, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := &store.Document{
		Name:     name,
		Source:   header.Filename,
		Config:   settings.Layout,
		Styles:   settings.Styles,
		Orphans:  settings.Orphans,
		Items:    lay.Items,
		Geometry: lay.Geometry,
		Overflow: lay.Overflow,
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("stored document", "id", doc.ID, "name", doc.Name, "items", len(doc.Items))
	writeJSON(w, http.StatusCreated, uploadResponse{Document: doc, Warnings: nonNil(pipeline.Warnings(lay))})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(summaries))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRender renders a stored document. The "tree" format is the tree
// diagram as SVG; every other format is the WBS chart. The query flags
// guide and interactive apply to SVG output.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := strings.ToLower(chi.URLParam(r, "format"))
	viz := render.VizWBS
	if format == formatTreeSVG {
		viz, format = render.VizTree, render.FormatSVG
	}

	forest, geoms, err := doc.Forest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lay := &pipeline.Layout{
		Items:    doc.Items,
		Forest:   forest,
		Geometry: geoms,
		Overflow: doc.Overflow,
	}
	opts := pipeline.Options{
		Name:        doc.Name,
		Config:      doc.Config,
		Styles:      doc.Styles,
		Orphans:     doc.Orphans,
		VizType:     viz,
		Formats:     []string{format},
		Guide:       r.URL.Query().Has("guide"),
		Interactive: r.URL.Query().Has("interactive"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RenderTimeout)
	defer cancel()
	artifacts, err := s.runner.Render(ctx, lay, opts)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "render %s timed out", format)
		}
		s.writeError(w, r, err)
		return
	}

	disposition := "attachment"
	if format == render.FormatSVG || format == render.FormatPNG || format == render.FormatJSON {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": doc.Name + "." + format,
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// settings resolves request settings: a TOML document replaces the server
// defaults, and a non-empty orphan policy overrides either.
func (s *Server) settings(doc, orphans string) (config.Settings, error) {
	settings := s.opts.Settings
	if strings.TrimSpace(doc) != "" {
		var err error
		if settings, err = config.DecodeString(doc); err != nil {
			return config.Settings{}, err
		}
	}
	if orphans != "" {
		p, err := outline.ParseOrphanPolicy(orphans)
		if err != nil {
			return config.Settings{}, err
		}
		settings.Orphans = p
	}
	return settings, nil
}

func (s *Server) pipelineOptions(name string, settings config.Settings) pipeline.Options {
	return pipeline.Options{
		Name:    name,
		Config:  settings.Layout,
		Styles:  settings.Styles,
		Orphans: settings.Orphans,
	}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
