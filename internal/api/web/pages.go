package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/infrastructure/vision"
)

//go:embed templates/*.html
var templatesFS embed.FS

type menuItem struct {
	Title  string
	Icon   string
	Href   string
	Active bool
}

type resultView struct {
	Diagnosis *entity.Diagnosis
	ImageURI  template.URL // исходное изображение для показа рядом с результатом
}

type pageData struct {
	Title    string
	Menu     []menuItem
	Result   *resultView
	Diseases []entity.Disease
	Error    string
	Ready    bool
}

var pageHrefs = map[entity.Page]string{
	entity.PageWelcome:   "/",
	entity.PageDiagnosis: "/diagnosis",
	entity.PageDiseases:  "/diseases",
}

func parseTemplates() (map[entity.Page]*template.Template, error) {
	funcs := template.FuncMap{
		"headline": resultHeadline,
	}

	pages := make(map[entity.Page]*template.Template, len(entity.Pages()))
	for _, p := range entity.Pages() {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/"+string(p)+".html")
		if err != nil {
			return nil, err
		}
		pages[p] = t
	}
	return pages, nil
}

func menu(active entity.Page) []menuItem {
	items := make([]menuItem, 0, len(entity.Pages()))
	for _, p := range entity.Pages() {
		items = append(items, menuItem{
			Title:  p.Title(),
			Icon:   p.Icon(),
			Href:   pageHrefs[p],
			Active: p == active,
		})
	}
	return items
}

// resultHeadline заголовок результата, общий для страницы и API.
func resultHeadline(d *entity.Diagnosis) string {
	if !d.Accepted {
		return "⚠️ Gambar ini kemungkinan bukan daun jambu mete."
	}
	return "✅ Gambar dikenali sebagai: " + d.Prediction.Label
}

func (s *Server) render(w http.ResponseWriter, page entity.Page, data pageData, status int) {
	data.Menu = menu(page)
	data.Ready = s.opts.Diagnosis.Ready()

	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("Failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.render(w, entity.PageWelcome, pageData{
		Title: "Selamat Datang di Aplikasi Diagnosis Daun Jambu Mete",
	}, http.StatusOK)
}

func (s *Server) handleDiagnosisForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, entity.PageDiagnosis, pageData{
		Title: "Diagnosis Penyakit Daun Jambu Mete",
	}, http.StatusOK)
}

func (s *Server) handleDiagnosisSubmit(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Diagnosis Penyakit Daun Jambu Mete"}

	in, err := readInput(w, r, s.opts.MaxUploadBytes)
	if err != nil {
		code, status := classifyError(err)
		data.Error = userMessage(code)
		s.render(w, entity.PageDiagnosis, data, status)
		return
	}

	d, err := s.opts.Diagnosis.Diagnose(r.Context(), in)
	if err != nil {
		code, status := classifyError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Diagnosis failed", "error", err)
		}
		data.Error = userMessage(code)
		s.render(w, entity.PageDiagnosis, data, status)
		return
	}

	data.Result = &resultView{Diagnosis: d, ImageURI: dataURI(in.Data)}
	s.render(w, entity.PageDiagnosis, data, http.StatusOK)
}

func (s *Server) handleDiseases(w http.ResponseWriter, r *http.Request) {
	s.render(w, entity.PageDiseases, pageData{
		Title:    "Informasi Penyakit Daun Jambu Mete",
		Diseases: s.opts.Diseases.List(),
	}, http.StatusOK)
}

// dataURI встраивает уже проверенное изображение прямо в страницу.
func dataURI(imageData []byte) template.URL {
	format, err := vision.DetectFormat(imageData)
	if err != nil {
		return ""
	}
	return template.URL("data:" + vision.MIMEType(format) + ";base64," + base64.StdEncoding.EncodeToString(imageData))
}
