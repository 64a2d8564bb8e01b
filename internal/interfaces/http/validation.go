package http

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance validador compartido: nombres de campo según el tag json y
// decimal.Decimal validado como número.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// fieldErrors errores de validación por campo del body.
type fieldErrors struct {
	fields map[string]string
}

func (e *fieldErrors) Error() string { return "datos inválidos" }

// bindAndValidate parsea el body JSON en out y aplica los tags validate.
func bindAndValidate(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &fieldErrors{fields: map[string]string{"body": "cuerpo inválido"}}
	}
	return validateStruct(out)
}

func validateStruct(out interface{}) error {
	err := validatorInstance().Struct(out)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return &fieldErrors{fields: fields}
}

// fieldPath ruta del campo sin el nombre del struct raíz (items[0].quantity).
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "email":
		return "email inválido"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "longitud mínima " + fe.Param()
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "longitud máxima " + fe.Param()
		}
		return "debe ser menor o igual a " + fe.Param()
	case "gt":
		return "debe ser mayor a " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	}
	return "inválido (" + fe.Tag() + ")"
}

// parseQuery parsea los query params en out y aplica los tags validate.
func parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return &fieldErrors{fields: map[string]string{"query": "parámetros inválidos"}}
	}
	return validateStruct(out)
}

// parseDateRange lee ?from=&to= como RFC3339 o YYYY-MM-DD. Una fecha sin hora en
// to cubre el día completo.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, _, perr := parseDate(s)
		if perr != nil {
			return nil, nil, &fieldErrors{fields: map[string]string{"from": "fecha inválida"}}
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, dateOnly, perr := parseDate(s)
		if perr != nil {
			return nil, nil, &fieldErrors{fields: map[string]string{"to": "fecha inválida"}}
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	return t, true, err
}
