package testutils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Browser drives an http.Handler the way a browser would, replaying the
// cookies each response sets on the next request.
type Browser struct {
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewBrowser creates a Browser with an empty cookie jar.
func NewBrowser(handler http.Handler) *Browser {
	return &Browser{handler: handler, cookies: map[string]*http.Cookie{}}
}

// Do sends req with the stored cookies and records the ones it sets.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

// Get issues a GET for path.
func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// Post submits form to path as a regular form post.
func (b *Browser) Post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.Do(formRequest(path, form))
}

// PostHTMX submits form to path the way htmx does, with HX-Request set.
func (b *Browser) PostHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	req := formRequest(path, form)
	req.Header.Set("HX-Request", "true")
	return b.Do(req)
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
