package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/flashdeck/internal/domain"
)

// getSubjectParam returns the decoded {subject} path parameter.
// Subjects may contain escaped slashes, which chi leaves encoded.
func getSubjectParam(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "subject")
	subject, err := url.PathUnescape(raw)
	if err != nil {
		subject = raw
	}
	subject = domain.NormalizeSubject(subject)
	return subject, subject != ""
}
