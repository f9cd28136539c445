// Package configs provides the embedded configuration template for wordindex.
//
// The template is embedded at build time with //go:embed so `wordindex
// config init` works from any installed binary. It documents every key and
// carries the same values as internal/config NewConfig().
//
// To change the template, edit config.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the commented configuration written by `wordindex config init`
// for both the project file (.wordindex.yaml) and the user file.
//
//go:embed config.example.yaml
var ConfigTemplate string
