//go:build !pcap
// +build !pcap

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "pickreplay: PCAP support not enabled: rebuild with -tags=pcap")
	os.Exit(1)
}
