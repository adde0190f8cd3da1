package cors_test

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"

	"github.com/corspolicy/cors"
)

func ExampleMiddleware_Wrap() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello", handleHello) // note: not configured for CORS

	// create CORS middleware
	corsMw, err := cors.NewMiddleware(cors.Config{
		OriginPatterns: []string{"https://example.com"},
		Methods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		RequestHeaders: []string{"Authorization"},
	})
	if err != nil {
		log.Fatal(err)
	}

	api := http.NewServeMux()
	mux.Handle("/api/", corsMw.Wrap(api)) // note: method-less pattern here
	api.HandleFunc("GET /api/users", handleUsersGet)
	api.HandleFunc("POST /api/users", handleUsersPost)

	log.Fatal(http.ListenAndServe(":8080", mux))
}

func ExampleMiddleware_Handle() {
	corsMw, err := cors.NewMiddleware(cors.Config{
		Origins: []cors.AllowOrigin{
			cors.AllowOriginRegexp(regexp.MustCompile(`^https://[a-z0-9-]+\.example\.com$`)),
		},
		Methods:        []string{http.MethodGet, http.MethodPost},
		RequestHeaders: []string{"Accept", "Content-Type"},
		Policy: cors.Policy{
			Credentialed:    true,
			MaxAgeInSeconds: 7200,
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodOptions, "https://api.example.com/users", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "post")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	next := cors.HandlerFunc(func(*http.Request) (cors.Response, error) {
		panic("never called for preflight requests")
	})
	res, err := corsMw.Handle(req, next)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Status(), res.StatusText())
	hdrs := res.Header()
	for _, k := range []string{
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Credentials",
		"Access-Control-Max-Age",
	} {
		fmt.Printf("%s: %s\n", k, hdrs.Get(k))
	}
	// Output:
	// 204 No Content
	// Access-Control-Allow-Origin: https://app.example.com
	// Access-Control-Allow-Methods: GET,POST
	// Access-Control-Allow-Headers: Accept,Content-Type
	// Access-Control-Allow-Credentials: true
	// Access-Control-Max-Age: 7200
}

func handleHello(w http.ResponseWriter, _ *http.Request) {
	io.WriteString(w, "Hello, World!")
}

func handleUsersGet(w http.ResponseWriter, _ *http.Request) {
	// omitted
}

func handleUsersPost(w http.ResponseWriter, _ *http.Request) {
	// omitted
}
