package handler

import (
	"context"
	"encoding/json"
	"errors"
	c "eventers-ticketing/context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

func validateStruct(ctx context.Context, payload interface{}) error {
	err := validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	var errorFields validator.ValidationErrors
	if !errors.As(err, &errorFields) {
		return err
	}

	errMessages := make([]string, len(errorFields))
	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s': failed '%s'", errorField.Field(), errorField.Tag())
	}
	return errors.New(strings.Join(errMessages, ", "))
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func callerFrom(r *http.Request) (c.Caller, bool) {
	return c.GetCaller(r.Context())
}
