// Package netio decodes Ethernet/IPv4/TCP frames captured off the wire,
// drives the bounded-duration capture loop, canonicalizes TCP 4-tuples into
// session keys, writes the pcap dump, and selects a capture interface.
package netio
