package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// staticTypes lists the file types served from the static directory.
var staticTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".svg":  "image/svg+xml",
}

// Static serves *.html and *.svg files from dir for GET requests and answers
// 404 for everything else. It is installed as the router's NoRoute handler.
func Static(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}

		name := path.Clean("/" + c.Request.URL.Path)
		if name == "/" {
			name = "/index.html"
		}
		contentType, ok := staticTypes[path.Ext(name)]
		if !ok {
			notFound(c)
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			notFound(c)
			return
		}

		c.Header("Content-Type", contentType)
		c.File(file)
	}
}

func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404: not found")
}
