// Package validate checks user supplied durations, dates and import records.
//
// Besides the stock go-playground tags it knows:
//
//	hhmm     a signed HH:MM duration; the unset marker "--:--" is rejected
//	punch    a punch time: HH:MM or the unset marker "--:--"
//	isodate  a YYYY-MM-DD calendar date
//
// model.Record additionally gets a struct-level rule that depends on its type.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

// Errors maps a field name to the rule it failed.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "invalid " + strings.Join(parts, ", ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return Duration(fl.Field().String())
	})
	mustRegister(v, "punch", func(fl validator.FieldLevel) bool {
		return timemath.Validate(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		return Date(fl.Field().String())
	})
	v.RegisterStructValidation(recordRules, model.Record{})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// Struct validates s and returns Errors, or nil when s is valid.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Duration reports whether s is a storable HH:MM duration.
func Duration(s string) bool {
	return s != timemath.Invalid && timemath.Validate(s)
}

// Date reports whether s is a YYYY-MM-DD calendar date.
func Date(s string) bool {
	_, err := timecalc.ParseDate(s)
	return err == nil
}

func recordRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(model.Record)
	switch r.Type {
	case model.RecordFlexible:
		if r.Values == nil {
			sl.ReportError(r.Values, "values", "Values", "required", "")
			return
		}
		for i, p := range r.Values {
			if !timemath.Validate(p) {
				sl.ReportError(p, fmt.Sprintf("values[%d]", i), "Values", "punch", "")
			}
		}
	case model.RecordWaived, model.RecordRegular:
		if !Duration(r.Hours) {
			sl.ReportError(r.Hours, "hours", "Hours", "hhmm", "")
		}
	}
}
