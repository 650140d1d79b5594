// Package discovery advertises the cecctl HTTP API over mDNS (DNS-SD) and
// browses for other instances on the local network.
package discovery
