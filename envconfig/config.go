// config.go - Haupt-Konfigurationsfunktionen fuer forge
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (FORGE_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (FORGE_ORIGINS)
// - AllowedHosts: Zusaetzliche Host-Header fuer Loopback (FORGE_ALLOWED_HOSTS)
// - Models: Gibt Model-Verzeichnis zurueck (FORGE_MODELS)
// - LogLevel: Gibt Log-Level zurueck (FORGE_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Engine-Einstellungen (Tiles, Threads, Korruption)
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via FORGE_HOST
// Default: http://127.0.0.1:11480
func Host() *url.URL {
	defaultPort := "11480"

	s := strings.TrimSpace(Var("FORGE_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via FORGE_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("FORGE_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	origins = append(origins,
		"app://*",
		"file://*",
	)

	return origins
}

// AllowedHosts gibt zusaetzlich erlaubte Host-Header zurueck
// Konfigurierbar via FORGE_ALLOWED_HOSTS (komma-separiert, "*.domain" erlaubt)
// Nur relevant wenn der Server auf Loopback lauscht
func AllowedHosts() (hosts []string) {
	for _, h := range strings.Split(Var("FORGE_ALLOWED_HOSTS"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Models gibt das Model-Verzeichnis zurueck
// Konfigurierbar via FORGE_MODELS
// Default: $HOME/.forge/models
func Models() string {
	if s := Var("FORGE_MODELS"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".forge", "models")
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via FORGE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("FORGE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
