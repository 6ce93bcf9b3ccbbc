package httpadapter

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

const sourceForm = "form"

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type selectField struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

type numberField struct {
	Name  string
	Label string
	Min   string
	Max   string
	Step  string
	Value string
}

type formResult struct {
	Serious  string
	Slight   string
	Severity domain.Severity
}

type pageData struct {
	Selects          []selectField
	Numbers          []numberField
	Result           *formResult
	Error            string
	Threshold        float64
	GeocodingEnabled bool
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, s.newPage(formValues(domain.DefaultRecord())))
}

func (s *Server) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		page := s.newPage(formValues(domain.DefaultRecord()))
		page.Error = "The form could not be read."
		s.renderPage(w, http.StatusBadRequest, page)
		return
	}

	page := s.newPage(r.PostForm)

	rec, err := recordFromForm(r.PostForm)
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceForm, kindLabel(err)).Inc()
		page.Error = err.Error()
		s.renderPage(w, http.StatusUnprocessableEntity, page)
		return
	}

	a, err := s.assess(r.Context(), rec, sourceForm)
	switch {
	case err == nil:
		page.Result = &formResult{
			Serious:  fmt.Sprintf("%.2f", a.Probabilities.Serious),
			Slight:   fmt.Sprintf("%.2f", a.Probabilities.Slight),
			Severity: a.Severity,
		}
		s.renderPage(w, http.StatusOK, page)
	case domain.ErrorField(err) != "":
		page.Error = err.Error()
		s.renderPage(w, http.StatusUnprocessableEntity, page)
	default:
		s.logger.Error("form assessment failed", "error", err)
		page.Error = "The severity model is unavailable. Please try again later."
		s.renderPage(w, http.StatusServiceUnavailable, page)
	}
}

// newPage builds the form, preselecting the submitted (or default) values.
func (s *Server) newPage(values url.Values) pageData {
	page := pageData{Threshold: s.threshold, GeocodingEnabled: s.geocoder != nil}
	for _, c := range domain.Categories() {
		page.Selects = append(page.Selects, selectField{
			Name:     c.Field,
			Label:    fieldLabel(c.Field),
			Options:  c.Members,
			Selected: values.Get(c.Field),
		})
	}
	for _, d := range domain.NumericDomains() {
		step := "any"
		if d.Integer {
			step = "1"
		}
		page.Numbers = append(page.Numbers, numberField{
			Name:  d.Field,
			Label: fieldLabel(d.Field),
			Min:   formatNumber(d.Min),
			Max:   formatNumber(d.Max),
			Step:  step,
			Value: values.Get(d.Field),
		})
	}
	return page
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// recordFromForm converts submitted form values. Categorical values are
// copied verbatim for the encoder to check; numbers must parse.
func recordFromForm(values url.Values) (domain.InputRecord, error) {
	rec := domain.InputRecord{
		DayOfWeek:             values.Get(domain.FieldDayOfWeek),
		JunctionDetail:        values.Get(domain.FieldJunctionDetail),
		LocalAuthority:        values.Get(domain.FieldLocalAuthority),
		LightConditions:       values.Get(domain.FieldLightConditions),
		RoadSurfaceConditions: values.Get(domain.FieldRoadSurfaceConditions),
		RoadType:              values.Get(domain.FieldRoadType),
		UrbanOrRural:          values.Get(domain.FieldUrbanOrRural),
		VehicleType:           values.Get(domain.FieldVehicleType),
	}

	var err error
	if rec.Latitude, err = parseFloatField(values, domain.FieldLatitude); err != nil {
		return rec, err
	}
	if rec.Longitude, err = parseFloatField(values, domain.FieldLongitude); err != nil {
		return rec, err
	}
	if rec.NumberOfCasualties, err = parseIntField(values, domain.FieldNumberOfCasualties); err != nil {
		return rec, err
	}
	if rec.NumberOfVehicles, err = parseIntField(values, domain.FieldNumberOfVehicles); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseFloatField(values url.Values, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(values.Get(field)), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: not a number", field, domain.ErrMalformedInput)
	}
	return v, nil
}

func parseIntField(values url.Values, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(values.Get(field)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w: not a whole number", field, domain.ErrMalformedInput)
	}
	return v, nil
}

// formValues renders a record as form values.
func formValues(rec domain.InputRecord) url.Values {
	return url.Values{
		domain.FieldDayOfWeek:             {rec.DayOfWeek},
		domain.FieldJunctionDetail:        {rec.JunctionDetail},
		domain.FieldLatitude:              {formatNumber(rec.Latitude)},
		domain.FieldLongitude:             {formatNumber(rec.Longitude)},
		domain.FieldLocalAuthority:        {rec.LocalAuthority},
		domain.FieldLightConditions:       {rec.LightConditions},
		domain.FieldNumberOfCasualties:    {strconv.Itoa(rec.NumberOfCasualties)},
		domain.FieldNumberOfVehicles:      {strconv.Itoa(rec.NumberOfVehicles)},
		domain.FieldRoadSurfaceConditions: {rec.RoadSurfaceConditions},
		domain.FieldRoadType:              {rec.RoadType},
		domain.FieldUrbanOrRural:          {rec.UrbanOrRural},
		domain.FieldVehicleType:           {rec.VehicleType},
	}
}

// fieldLabel turns "number_of_casualties" into "Number of casualties".
func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
