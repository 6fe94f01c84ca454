// Package web embeds the pages served to browsers when a short link cannot be followed.
package web

import "embed"

//go:embed *.html
var FS embed.FS
