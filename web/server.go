// Package web serves the request form, the request table with date/technician
// filtering, and spreadsheet downloads. Login is a plain username/password
// check against the configured users.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"servicedesk/config"
	"servicedesk/filter"
	"servicedesk/intake"
	"servicedesk/output"
	"servicedesk/sheet"
	"servicedesk/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store persists per-user settings and login sessions.
type Store interface {
	storage.SettingsStore
	storage.SessionStore
}

type Server struct {
	gateway sheet.Gateway
	intake  *intake.Service
	store   Store
	cfg     config.Config
	router  chi.Router
}

type pageBase struct {
	Title         string
	Path          string
	User          *identity
	Theme         string
	Themes        []string
	ProfilePic    template.URL
	BackgroundImg template.URL
}

type formPageView struct {
	pageBase
	Values    intake.Form
	Errors    map[string]string
	Submitted string
}

type tablePageView struct {
	pageBase
	Header     []string
	Rows       [][]string
	Count      int
	Start      string
	End        string
	Technician string
	Filtered   bool
}

type loginPageView struct {
	pageBase
	Username string
	Error    string
}

type filterRequest struct {
	Start      string
	End        string
	From       time.Time
	To         time.Time
	Technician string
}

func NewServer(gateway sheet.Gateway, store Store, cfg config.Config) http.Handler {
	server := &Server{
		gateway: gateway,
		intake:  intake.NewService(gateway, cfg.Defaults),
		store:   store,
		cfg:     cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/login", server.handleLoginPage)
	r.Post("/login", server.handleLogin)
	r.Post("/logout", server.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(server.requireIdentity)
		r.Get("/", server.handleIndex)
		r.Post("/submit", server.handleSubmit)
		r.Get("/view", server.handleView)
		r.Post("/filter", server.handleFilter)
		r.Post("/download", server.handleDownload)
		r.Get("/api/settings", server.handleAPIGetSettings)
		r.Post("/api/settings", server.handleAPISaveSettings)
		r.Post("/settings", server.handleSettingsForm)
	})
	server.router = r

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := formPageView{
		pageBase:  s.page(r, "servicedesk - new request"),
		Values:    intake.Form{CreatedDate: time.Now().Format("2006-01-02")},
		Submitted: strings.TrimSpace(r.URL.Query().Get("submitted")),
	}
	s.render(w, http.StatusOK, "index.html", view)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("parse form: %v", err), http.StatusBadRequest)
		return
	}

	id := identityFrom(r.Context())
	form := intake.FormFromValues(r.PostForm.Get)
	record, err := s.intake.Submit(r.Context(), form, id.Technician)
	if err != nil {
		var validationErr *intake.ValidationError
		if errors.As(err, &validationErr) {
			view := formPageView{
				pageBase: s.page(r, "servicedesk - new request"),
				Values:   form,
				Errors:   validationErr.Fields,
			}
			s.render(w, http.StatusBadRequest, "index.html", view)
			return
		}
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	http.Redirect(w, r, "/?submitted="+url.QueryEscape(record.RequestID), http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	table, err := s.readTable(r.Context())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	view := tablePageView{
		pageBase: s.page(r, "servicedesk - requests"),
		Header:   table.Header,
		Rows:     table.Rows,
		Count:    table.Len(),
	}
	s.render(w, http.StatusOK, "view.html", view)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFilterRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := s.readTable(r.Context())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	matches := filter.Records(table, req.From, req.To, req.Technician)

	view := tablePageView{
		pageBase:   s.page(r, "servicedesk - requests "+req.Start+" to "+req.End),
		Header:     table.Header,
		Rows:       filter.Rows(matches),
		Count:      len(matches),
		Start:      req.Start,
		End:        req.End,
		Technician: req.Technician,
		Filtered:   true,
	}
	s.render(w, http.StatusOK, "view.html", view)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFilterRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.PostForm.Get("format")
	writer, err := output.WriterForFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := s.readTable(r.Context())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	matches := filter.Records(table, req.From, req.To, req.Technician)

	var export sheet.Table
	switch strings.ToLower(strings.TrimSpace(r.PostForm.Get("mode"))) {
	case "", "rows":
		export = output.BuildExport(table.Header, matches)
	case "summary":
		export = output.SummaryTable(output.BuildEffortSummaries(table.Header, matches))
	default:
		http.Error(w, "unsupported export mode (expected rows or summary)", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, export); err != nil {
		http.Error(w, fmt.Sprintf("build export: %v", err), http.StatusInternalServerError)
		return
	}

	filename := output.ExportFilename(req.Start, req.End, format)
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAPIGetSettings(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	settings, err := s.store.GetSettings(r.Context(), id.Username)
	if err != nil {
		http.Error(w, fmt.Sprintf("load settings: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAPISaveSettings(w http.ResponseWriter, r *http.Request) {
	var body storage.Settings
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := identityFrom(r.Context())
	if err := s.store.SaveSettings(r.Context(), id.Username, body); err != nil {
		if invalidSettings(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("save settings: %v", err), http.StatusInternalServerError)
		return
	}

	saved, err := s.store.GetSettings(r.Context(), id.Username)
	if err != nil {
		http.Error(w, fmt.Sprintf("load settings: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleSettingsForm saves the settings form from the page header. A reset
// submission restores the defaults.
func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("parse form: %v", err), http.StatusBadRequest)
		return
	}

	settings := storage.DefaultSettings()
	if r.PostForm.Get("reset") == "" {
		settings = storage.Settings{
			Theme:         r.PostForm.Get("theme"),
			ProfilePic:    r.PostForm.Get("profile_pic"),
			BackgroundImg: r.PostForm.Get("background_img"),
		}
	}

	id := identityFrom(r.Context())
	if err := s.store.SaveSettings(r.Context(), id.Username, settings); err != nil {
		if invalidSettings(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("save settings: %v", err), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, settingsReturnPath(r.PostForm.Get("next")), http.StatusSeeOther)
}

// settingsReturnPath only redirects back to pages that can be fetched with GET.
func settingsReturnPath(next string) string {
	switch next {
	case "/", "/view":
		return next
	default:
		return "/"
	}
}

func invalidSettings(err error) bool {
	return errors.Is(err, storage.ErrInvalidTheme) || errors.Is(err, storage.ErrInvalidImage)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.html", loginPageView{pageBase: s.page(r, "servicedesk - sign in")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("parse form: %v", err), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	user, ok := s.authenticate(username, password)
	if !ok {
		log.WithField("username", username).Warn("rejected login")
		view := loginPageView{
			pageBase: s.page(r, "servicedesk - sign in"),
			Username: username,
			Error:    "unknown username or wrong password",
		}
		s.render(w, http.StatusUnauthorized, "login.html", view)
		return
	}

	token, err := s.store.CreateSession(r.Context(), user.Username)
	if err != nil {
		http.Error(w, fmt.Sprintf("create session: %v", err), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			log.WithError(err).Warn("delete session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// parseFilterRequest reads the date range and resolves the technician filter:
// regular users only see their own requests, admins may pick one or leave it
// empty for all.
func (s *Server) parseFilterRequest(r *http.Request) (filterRequest, error) {
	if err := r.ParseForm(); err != nil {
		return filterRequest{}, fmt.Errorf("parse form: %w", err)
	}
	start := strings.TrimSpace(r.PostForm.Get("start_date"))
	end := strings.TrimSpace(r.PostForm.Get("end_date"))
	from, to, err := filter.ParseRange(start, end)
	if err != nil {
		return filterRequest{}, err
	}

	id := identityFrom(r.Context())
	technician := id.Technician
	if id.Admin {
		technician = strings.TrimSpace(r.PostForm.Get("technician"))
	}

	return filterRequest{Start: start, End: end, From: from, To: to, Technician: technician}, nil
}

func (s *Server) readTable(ctx context.Context) (sheet.Table, error) {
	table, err := s.gateway.ReadAll(ctx)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("%w: %w", intake.ErrSheetUnavailable, err)
	}
	return table, nil
}

// page fills the layout fields, including the signed-in user's settings. A
// settings lookup failure falls back to the defaults.
func (s *Server) page(r *http.Request, title string) pageBase {
	base := pageBase{
		Title:  title,
		Path:   r.URL.Path,
		Theme:  storage.DefaultSettings().Theme,
		Themes: storage.Themes,
	}
	id, ok := lookupIdentity(r.Context())
	if !ok {
		return base
	}
	base.User = &id

	settings, err := s.store.GetSettings(r.Context(), id.Username)
	if err != nil {
		log.WithError(err).WithField("user", id.Username).Warn("load settings for page")
		return base
	}
	base.Theme = settings.Theme
	base.ProfilePic = imageURL(settings.ProfilePic)
	base.BackgroundImg = imageURL(settings.BackgroundImg)
	return base
}

// imageURL marks a stored image URL as safe for src and CSS url() contexts.
// Values that fail CheckImageURL, such as rows saved before it existed, are
// dropped.
func imageURL(value string) template.URL {
	if err := storage.CheckImageURL(value); err != nil {
		log.WithError(err).Debug("ignoring stored image url")
		return ""
	}
	return template.URL(value)
}

func (s *Server) render(w http.ResponseWriter, status int, pageTemplate string, data any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, pageTemplate, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderTemplate(w io.Writer, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorStatus(err error) int {
	if errors.Is(err, intake.ErrSheetUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
