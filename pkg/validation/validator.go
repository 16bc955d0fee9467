package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dmehra2102/chipstore/pkg/httpx"
)

// New returns a validator that reports fields by their json names.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeAndValidate decodes the JSON body into out and validates it. On
// failure it writes a 400 response and returns the error so the handler can
// short-circuit.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, out any, v *validatorv10.Validate) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "invalid_request_body: " + err.Error()})
		return err
	}
	if err := v.Struct(out); err != nil {
		httpx.WriteFieldErrors(w, FieldErrors(err))
		return err
	}
	return nil
}

// FieldErrors flattens validator errors into field -> failed tag.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fieldPath(fe)] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}

// fieldPath drops the root struct name: "PlaceOrder.products[0].id" -> "products[0].id".
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
