package config

import "os"

const DefaultAPIURL = "http://127.0.0.1:5000"

// APIURL returns the backend base URL from the DIAGRAMIO_API_URL env var,
// falling back to DefaultAPIURL.
func APIURL() string {
	if env := os.Getenv("DIAGRAMIO_API_URL"); env != "" {
		return env
	}
	return DefaultAPIURL
}
