package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

// Request is what a Handler sees of the incoming call.
type Request struct {
	*http.Request
	w http.ResponseWriter
}

func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func (r *Request) SessionID() string {
	return SessionID(r.Context())
}

// RenewSession points the session cookie at sid for the rest of this
// response. It reports false on routes registered without the session
// middleware.
func (r *Request) RenewSession(sid string) bool {
	issue, ok := r.Context().Value(sessionIssuerKey{}).(sessionIssuer)
	if !ok || r.w == nil || !validSessionID(sid) {
		return false
	}
	issue(r.w, sid)
	return true
}

// DecodeBody strictly decodes a single JSON document of at most 1 MiB into
// dst. Unknown fields and trailing data are rejected as invalid format.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	body := r.Body
	if r.w != nil {
		body = http.MaxBytesReader(r.w, body, maxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if dec.Decode(dst) != nil {
		return goerror.NewInvalidFormat()
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}
