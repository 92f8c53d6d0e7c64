// Package configs embeds the commented configuration template written by
// `ontosearch config init`.
//
// The template must stay in sync with config.NewConfig(); the config
// package tests load it and compare.
package configs

import _ "embed"

// ConfigTemplate is the user and project configuration template.
//
//go:embed config.example.yaml
var ConfigTemplate string
