// MODUL: routes_middleware
// ZWECK: Host-Pruefung fuer einen Server auf Loopback
// INPUT: Lausch-Adresse, zusaetzliche Hosts aus FORGE_ALLOWED_HOSTS
// OUTPUT: gin.HandlerFunc
// NEBENEFFEKTE: liest einmalig die Interface-Adressen
// ABHAENGIGKEITEN: gin, envconfig (ueber routes.go)
// HINWEISE: Lauscht der Server nicht auf Loopback, ist jede Anfrage
//           erlaubt. Sonst werden fremde Host-Header mit 403 abgewiesen,
//           damit eine Webseite den lokalen Server nicht per DNS-Rebinding
//           erreicht.

package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// localSuffixes sind Namensraeume die nie oeffentlich aufgeloest werden
var localSuffixes = []string{".localhost", ".local", ".internal"}

// hostGuard entscheidet anhand des Host-Headers ob eine Anfrage bedient wird
type hostGuard struct {
	// open: Server lauscht nicht auf Loopback, keine Pruefung
	open bool

	names    map[string]bool
	suffixes []string
	ifaces   map[netip.Addr]bool
}

// newHostGuard baut die Host-Liste fuer addr. extra enthaelt exakte Namen
// oder Wildcards der Form "*.example.org".
func newHostGuard(addr net.Addr, extra []string) *hostGuard {
	g := &hostGuard{
		names:    map[string]bool{"": true, "localhost": true},
		suffixes: append([]string(nil), localSuffixes...),
		ifaces:   map[netip.Addr]bool{},
	}

	if addr == nil {
		g.open = true
		return g
	}
	if ap, err := netip.ParseAddrPort(addr.String()); err == nil && !ap.Addr().IsLoopback() {
		g.open = true
		return g
	}

	if hostname, err := os.Hostname(); err == nil {
		g.names[strings.ToLower(hostname)] = true
	}

	for _, h := range extra {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			g.suffixes = append(g.suffixes, h[1:])
		default:
			g.names[h] = true
		}
	}

	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if p, err := netip.ParsePrefix(a.String()); err == nil {
				g.ifaces[p.Addr().Unmap()] = true
			}
		}
	}

	return g
}

// allow prueft einen Host-Header (mit oder ohne Port)
func (g *hostGuard) allow(hostport string) bool {
	if g.open {
		return true
	}

	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = strings.Trim(hostport, "[]")
	}
	host = strings.ToLower(host)

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || g.ifaces[ip]
	}

	if g.names[host] {
		return true
	}
	for _, s := range g.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// handler gibt die Middleware zurueck. Preflight-Anfragen erlaubter Hosts
// werden direkt mit 204 beantwortet.
func (g *hostGuard) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.open {
			c.Next()
			return
		}

		if !g.allow(c.Request.Host) {
			slog.Warn("request rejected", "host", c.Request.Host, "path", c.Request.URL.Path)
			abortWithError(c, fmt.Errorf("%w: %s", errHostNotAllowed, c.Request.Host))
			return
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
