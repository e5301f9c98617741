package structures

import "net/http"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Name    string
	Url     string
	Handler http.Handler
}
