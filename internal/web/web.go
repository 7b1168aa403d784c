// Package web embeds the studio's single-page UI.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
