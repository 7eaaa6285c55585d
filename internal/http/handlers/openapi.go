package handlers

import (
	_ "embed"
	"html/template"
	"net/http"
)

// Paths of the API description, shared with the router.
const (
	OpenAPIPath = "/v1/openapi.json"
	DocsPath    = "/v1/docs"
)

//go:embed openapi.json
var openAPISpec []byte

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
    </style>
  </head>
  <body>
    <redoc spec-url="{{.SpecURL}}"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
  </body>
</html>`))

// OpenAPIJSON serves the embedded API description. It only changes with a
// new build, so clients may cache it briefly.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

// OpenAPIDocs renders a ReDoc page for OpenAPIPath, titled with the model in use.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	title := "Video Prompt API"
	if a.Model != "" {
		title += " (" + a.Model + ")"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := docsPage.Execute(w, struct{ Title, SpecURL string }{title, OpenAPIPath}); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: render docs failed")
	}
}
