package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ppa/pkg/models"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts the Markdown report and wraps it in a standalone page.
func HTML(w io.Writer, a *models.Analysis, opts Options) error {
	var src bytes.Buffer
	if err := Markdown(&src, a, opts); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := fmt.Fprintf(w, pageTemplate, html.EscapeString(opts.title()), body.String())
	return err
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
blockquote { color: #8a4b00; }
</style>
</head>
<body>
%s</body>
</html>
`

// JSON writes the analysis bundle.
func JSON(w io.Writer, a *models.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// Write renders a in the named format: markdown, html or json.
func Write(w io.Writer, format string, a *models.Analysis, opts Options) error {
	switch format {
	case "", "markdown", "md":
		return Markdown(w, a, opts)
	case "html":
		return HTML(w, a, opts)
	case "json":
		return JSON(w, a)
	}
	return fmt.Errorf("unknown report format %q", format)
}
