// Package net serves the browser front end: the HTTP API, one websocket
// editor session per connection, LAN advertisement and the share link.
package net

import (
	"fmt"
	"net"
	"strconv"

	"ColoringBoard/internal/logging"
)

// OutgoingIP finds the preferred local IP address to share with other
// devices on the LAN.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; look at the interfaces instead.
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first IPv4 address of an interface that is up and
// not a loopback, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logging.For("net").Warn("no LAN address found, share link uses loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareURL returns the link other devices open to reach the server
// listening on addr. An empty host in addr is replaced by the LAN address.
func ShareURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("share url for %q: %w", addr, err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("share url for %q: bad port", addr)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = OutgoingIP()
	}
	return "http://" + net.JoinHostPort(host, port) + "/", nil
}
