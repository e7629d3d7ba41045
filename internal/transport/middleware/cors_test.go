package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/hr-backoffice/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CORS", func() {
	var reached bool

	serve := func(allowed, method, origin string, preflight bool) *httptest.ResponseRecorder {
		reached = false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusTeapot)
		})
		req := httptest.NewRequest(method, "/api/v1/employees", nil)
		req.Header.Set("Origin", origin)
		if preflight {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		}
		rec := httptest.NewRecorder()
		middleware.CORS(allowed)(next).ServeHTTP(rec, req)
		return rec
	}

	It("answers a preflight from a configured origin", func() {
		rec := serve("http://localhost:3000, https://hr.example.com", http.MethodOptions, "https://hr.example.com", true)

		Expect(reached).To(BeFalse())
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://hr.example.com"))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(Equal(http.MethodPost))
	})

	It("grants nothing to an origin that is not configured", func() {
		rec := serve("http://localhost:3000", http.MethodOptions, "https://evil.example.com", true)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(BeEmpty())
	})

	It("passes a plain OPTIONS request to the next handler", func() {
		rec := serve("http://localhost:3000", http.MethodOptions, "https://evil.example.com", false)

		Expect(reached).To(BeTrue())
		Expect(rec.Code).To(Equal(http.StatusTeapot))
	})

	It("allows any origin with a wildcard", func() {
		rec := serve("*", http.MethodGet, "https://anywhere.example.com", false)

		Expect(reached).To(BeTrue())
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})
