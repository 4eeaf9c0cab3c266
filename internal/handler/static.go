package handler

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// StaticFS is the embedded front end (set by the main package)
var StaticFS fs.FS

// compressMinSize is the smallest asset worth pre-compressing
const compressMinSize = 1024

type staticAsset struct {
	content     []byte
	brotli      []byte
	gzipped     []byte
	contentType string
	etag        string
	immutable   bool
}

// NewStaticHandler serves the front end from StaticFS, or from frontend/dist
// on disk when nothing is embedded. Unknown paths fall back to index.html.
func NewStaticHandler() http.Handler {
	fsys := StaticFS
	if fsys == nil {
		fsys = os.DirFS(filepath.Join("frontend", "dist"))
	}
	return newStaticHandler(fsys)
}

func newStaticHandler(fsys fs.FS) http.Handler {
	// 启动时一次性加载并预压缩所有文件
	assets := make(map[string]*staticAsset)
	fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		content, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil
		}
		assets[filePath] = buildAsset(filePath, content)
		return nil
	})
	index := assets["index.html"]

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := path.Clean(r.URL.Path)
		if urlPath == "/" || urlPath == "." {
			urlPath = "index.html"
		} else {
			urlPath = strings.TrimPrefix(urlPath, "/")
		}

		asset, ok := assets[urlPath]
		if !ok {
			asset = index
		}
		if asset == nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Frontend not built yet."))
			return
		}
		serveAsset(w, r, asset)
	})
}

func buildAsset(filePath string, content []byte) *staticAsset {
	a := &staticAsset{
		content:     content,
		contentType: contentTypeOf(filePath),
		etag:        fmt.Sprintf(`"%x"`, md5.Sum(content)),
		immutable:   strings.HasPrefix(filePath, "assets/"),
	}
	if !isCompressible(a.contentType) || len(content) <= compressMinSize {
		return a
	}

	var br bytes.Buffer
	bw := brotli.NewWriterLevel(&br, brotli.BestCompression)
	if _, err := bw.Write(content); err == nil && bw.Close() == nil && br.Len() < len(content) {
		a.brotli = br.Bytes()
	}

	var gz bytes.Buffer
	if gw, err := gzip.NewWriterLevel(&gz, gzip.BestCompression); err == nil {
		if _, err := gw.Write(content); err == nil && gw.Close() == nil && gz.Len() < len(content) {
			a.gzipped = gz.Bytes()
		}
	}
	return a
}

func serveAsset(w http.ResponseWriter, r *http.Request, a *staticAsset) {
	switch {
	case a.immutable:
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case strings.HasPrefix(a.contentType, "text/html"):
		w.Header().Set("Cache-Control", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=86400, must-revalidate")
	}

	w.Header().Set("ETag", a.etag)
	if r.Header.Get("If-None-Match") == a.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Vary", "Accept-Encoding")

	body := a.content
	accept := r.Header.Get("Accept-Encoding")
	switch {
	case a.brotli != nil && strings.Contains(accept, "br"):
		w.Header().Set("Content-Encoding", "br")
		body = a.brotli
	case a.gzipped != nil && strings.Contains(accept, "gzip"):
		w.Header().Set("Content-Encoding", "gzip")
		body = a.gzipped
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func isCompressible(contentType string) bool {
	for _, prefix := range []string{"text/", "application/javascript", "application/json", "application/xml", "image/svg+xml"} {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func contentTypeOf(filePath string) string {
	ext := path.Ext(filePath)
	switch ext {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js", ".mjs":
		return "application/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
