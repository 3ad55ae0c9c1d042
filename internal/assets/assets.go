// Package assets embeds the client JavaScript, CSS and project templates
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"net"
	"strconv"
)

//go:embed client
var clientFS embed.FS

//go:embed templates/*
var templatesFS embed.FS

// ClientFS returns the embedded client files
func ClientFS() fs.FS {
	sub, err := fs.Sub(clientFS, "client")
	if err != nil {
		panic(err)
	}
	return sub
}

// Asset is one bundled file and its path relative to the output directory.
type Asset struct {
	Name string
	Data []byte
}

// FrameworkFiles lists the client files replaced on every build. The base
// stylesheet and the live-reload script are handled separately.
var FrameworkFiles = []string{
	"unveil.js",
	"highlight.js",
	"highlight.css",
	"clipboard.js",
	"fontawesome/css/fontawesome.css",
}

// Framework returns the framework-owned files in FrameworkFiles order
func Framework() ([]Asset, error) {
	out := make([]Asset, 0, len(FrameworkFiles))
	for _, name := range FrameworkFiles {
		data, err := clientFS.ReadFile("client/" + name)
		if err != nil {
			return nil, fmt.Errorf("bundled asset %s: %w", name, err)
		}
		out = append(out, Asset{Name: name, Data: data})
	}
	return out, nil
}

// GetClientJS returns the slide navigation script
func GetClientJS() ([]byte, error) {
	return clientFS.ReadFile("client/unveil.js")
}

// GetBaseCSS returns the default presentation stylesheet
func GetBaseCSS() ([]byte, error) {
	return clientFS.ReadFile("client/unveil.css")
}

// GetHighlightJS returns the code highlighter
func GetHighlightJS() ([]byte, error) {
	return clientFS.ReadFile("client/highlight.js")
}

// GetHighlightCSS returns the highlighter theme
func GetHighlightCSS() ([]byte, error) {
	return clientFS.ReadFile("client/highlight.css")
}

// GetClipboardJS returns the copy-to-clipboard helper
func GetClipboardJS() ([]byte, error) {
	return clientFS.ReadFile("client/clipboard.js")
}

// GetIconCSS returns the icon stylesheet
func GetIconCSS() ([]byte, error) {
	return clientFS.ReadFile("client/fontawesome/css/fontawesome.css")
}

// LiveReloadJS returns the live-reload script connected to ws://host:port.
func LiveReloadJS(host string, port int) ([]byte, error) {
	body, err := clientFS.ReadFile("client/livereload.js")
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	head := "const socket = new WebSocket(" + strconv.Quote("ws://"+addr) + ");\n"
	return append([]byte(head), body...), nil
}

// GetLandingTemplate returns the first slide written by init
func GetLandingTemplate() ([]byte, error) {
	return templatesFS.ReadFile("templates/landing.md")
}

// GetSlideTemplate returns the example slide written by init and add
func GetSlideTemplate() ([]byte, error) {
	return templatesFS.ReadFile("templates/slide.md")
}
