package intake

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"servicedesk/config"
	"servicedesk/internal/timeutil"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

// ErrSheetUnavailable marks failures talking to the request sheet.
var ErrSheetUnavailable = errors.New("request sheet unavailable")

// Form carries the raw fields of one submission.
type Form struct {
	CreatedDate   string `form:"created_date" validate:"required,servicedate"`
	StartTime     string `form:"start_time" validate:"required,clock"`
	EndTime       string `form:"end_time" validate:"required,clock"`
	UserName      string `form:"user_name" validate:"required,max=200"`
	Process       string `form:"process" validate:"max=200"`
	ReportedBy    string `form:"reported_by" validate:"max=200"`
	IssueCategory string `form:"issue_category" validate:"required,max=200"`
	SubCategory   string `form:"sub_category" validate:"max=200"`
	Remarks       string `form:"remarks" validate:"max=2000"`
}

// FormFromValues builds a Form from a key lookup such as url.Values.Get.
func FormFromValues(get func(string) string) Form {
	return Form{
		CreatedDate:   get("created_date"),
		StartTime:     get("start_time"),
		EndTime:       get("end_time"),
		UserName:      get("user_name"),
		Process:       get("process"),
		ReportedBy:    get("reported_by"),
		IssueCategory: get("issue_category"),
		SubCategory:   get("sub_category"),
		Remarks:       get("remarks"),
	}
}

// ValidationError maps form keys to human-readable problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

type Service struct {
	gateway  sheet.Gateway
	defaults config.DefaultsConfig
	validate *validator.Validate
	now      func() time.Time
}

func NewService(gateway sheet.Gateway, defaults config.DefaultsConfig) *Service {
	return &Service{
		gateway:  gateway,
		defaults: defaults,
		validate: formValidator,
		now:      time.Now,
	}
}

// Validate trims the form and checks required fields and date/time formats.
func (s *Service) Validate(form Form) (Form, error) {
	form = trimForm(form)
	err := s.validate.Struct(form)
	if err == nil {
		return form, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return form, fmt.Errorf("validate form: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fieldErr := range fieldErrs {
		out.Fields[fieldErr.Field()] = describeFieldError(fieldErr)
	}
	return form, out
}

// Submit validates the form, derives the automatic fields from the current
// sheet contents and appends the record. The sequence number is the current
// data row count plus one, so concurrent submissions may collide.
func (s *Service) Submit(ctx context.Context, form Form, technician string) (servicerequest.Record, error) {
	form, err := s.Validate(form)
	if err != nil {
		return servicerequest.Record{}, err
	}

	table, err := s.gateway.ReadAll(ctx)
	if err != nil {
		return servicerequest.Record{}, fmt.Errorf("%w: %w", ErrSheetUnavailable, err)
	}
	if table.Empty() {
		if err := s.gateway.AppendRow(ctx, servicerequest.Headers); err != nil {
			return servicerequest.Record{}, fmt.Errorf("%w: write header: %w", ErrSheetUnavailable, err)
		}
	}

	record, err := s.buildRecord(form, table.Len()+1, technician)
	if err != nil {
		return servicerequest.Record{}, err
	}

	if err := s.gateway.AppendRow(ctx, record.Row()); err != nil {
		return servicerequest.Record{}, fmt.Errorf("%w: %w", ErrSheetUnavailable, err)
	}

	log.WithFields(log.Fields{
		"request_id": record.RequestID,
		"sl_no":      record.SlNo,
		"technician": record.Technician,
	}).Info("service request logged")
	return record, nil
}

func (s *Service) buildRecord(form Form, slNo int, technician string) (servicerequest.Record, error) {
	created, err := timeutil.NormalizeDate(form.CreatedDate)
	if err != nil {
		return servicerequest.Record{}, &ValidationError{Fields: map[string]string{"created_date": err.Error()}}
	}
	startMinutes, err := timeutil.ParseFormClock(form.StartTime)
	if err != nil {
		return servicerequest.Record{}, &ValidationError{Fields: map[string]string{"start_time": err.Error()}}
	}
	endMinutes, err := timeutil.ParseFormClock(form.EndTime)
	if err != nil {
		return servicerequest.Record{}, &ValidationError{Fields: map[string]string{"end_time": err.Error()}}
	}

	technician = strings.TrimSpace(technician)
	if technician == "" {
		technician = s.defaults.Technician
	}

	return servicerequest.Record{
		SlNo:          slNo,
		RequestID:     servicerequest.GenerateRequestID(slNo, s.now()),
		CreatedDate:   timeutil.FormatSheetDate(created),
		StartTime:     timeutil.FormatSheetClock(startMinutes),
		EndTime:       timeutil.FormatSheetClock(endMinutes),
		UserName:      servicerequest.CapitalizeFirst(form.UserName),
		Process:       servicerequest.CapitalizeFirst(form.Process),
		ReportedBy:    servicerequest.CapitalizeFirst(form.ReportedBy),
		Priority:      s.defaults.Priority,
		Technician:    technician,
		IssueCategory: servicerequest.CapitalizeFirst(form.IssueCategory),
		SubCategory:   servicerequest.CapitalizeFirst(form.SubCategory),
		EffortTime:    timeutil.ComputeEffort(form.StartTime, form.EndTime),
		Status:        s.defaults.Status,
		Remarks:       servicerequest.CapitalizeFirst(form.Remarks),
	}, nil
}

// formValidator is shared by all services; validator.Validate is safe for
// concurrent use once its tags are registered.
var formValidator = mustNewValidator()

func mustNewValidator() *validator.Validate {
	validate, err := newValidator()
	if err != nil {
		panic(err)
	}
	return validate
}

func newValidator() (*validator.Validate, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"servicedate": func(fl validator.FieldLevel) bool {
			_, err := timeutil.NormalizeDate(fl.Field().String())
			return err == nil
		},
		"clock": func(fl validator.FieldLevel) bool {
			_, err := timeutil.ParseFormClock(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return validate, nil
}

func describeFieldError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "servicedate":
		return "must be a date (YYYY-MM-DD or DD/MM/YYYY)"
	case "clock":
		return "must be a time (HH:MM)"
	case "max":
		return "must be at most " + fieldErr.Param() + " characters"
	default:
		return "is invalid"
	}
}

func trimForm(form Form) Form {
	return Form{
		CreatedDate:   strings.TrimSpace(form.CreatedDate),
		StartTime:     strings.TrimSpace(form.StartTime),
		EndTime:       strings.TrimSpace(form.EndTime),
		UserName:      strings.TrimSpace(form.UserName),
		Process:       strings.TrimSpace(form.Process),
		ReportedBy:    strings.TrimSpace(form.ReportedBy),
		IssueCategory: strings.TrimSpace(form.IssueCategory),
		SubCategory:   strings.TrimSpace(form.SubCategory),
		Remarks:       strings.TrimSpace(form.Remarks),
	}
}
