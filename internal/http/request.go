package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/product-discount/internal/apperr"
	"github.com/tuanvumaihuynh/product-discount/internal/http/apierr"
)

const maxBodyBytes = 1 << 20 // 1 MB

// bindPathID binds the {id} path parameter of the matched route.
func bindPathID(r *http.Request) (int64, error) {
	var id int64
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		}); err != nil {
		return 0, &apierr.ParamError{ParamName: "id", Err: err}
	}

	return id, nil
}

// decodeJSONBody decodes a single JSON value from the request body into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}

	if dec.More() {
		return apperr.ValidationErr.WrapParent(errors.New("request body must contain a single JSON value"))
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
