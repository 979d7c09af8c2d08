//go:build pcap
// +build pcap

// Command pickreplay replays captured pick UDP traffic from a PCAP file,
// decoding each datagram as a wire Pick message and re-emitting the valid
// ones as newline-delimited JSON on stdout — the same shape glass-app's
// stdin ingest loop reads — optionally paced to the capture's original
// timing. Grounded on the teacher's
// internal/lidar/network/pcap_realtime.go replay loop (BPF port filter,
// gopacket.NewPacketSource, inter-packet delay scaled by a speed
// multiplier), adapted from forwarding lidar frames over UDP to decoding
// and printing pick messages.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/usgs/neic-glass3-sub001/internal/wire"
)

var (
	pcapFile = flag.String("pcap", "", "path to the captured PCAP file")
	udpPort  = flag.Int("port", 8000, "UDP port the pick/correlation traffic was captured on")
	speed    = flag.Float64("speed", 0, "replay speed multiplier (1.0 = original timing, 0 = as fast as possible)")
)

func main() {
	flag.Parse()
	if *pcapFile == "" {
		fmt.Fprintln(os.Stderr, "usage: pickreplay --pcap <file> [--port 8000] [--speed 1.0]")
		os.Exit(1)
	}
	stats, err := replay(*pcapFile, *udpPort, *speed, os.Stdout)
	if err != nil {
		log.Fatalf("pickreplay: %v", err)
	}
	log.Printf("pickreplay: %d packets, %d decoded messages, %d dropped", stats.packets, stats.decoded, stats.dropped)
}

type replayStats struct {
	packets int
	decoded int
	dropped int
}

// replay reads every UDP datagram on port from pcapFile and writes each
// one that decodes as a valid Pick message to out, one JSON object per
// line. When speed > 0, it sleeps between packets scaled
// by the capture's own inter-packet gaps divided by speed, mirroring
// ReadPCAPFileRealtime's pacing; speed <= 0 replays as fast as possible.
func replay(pcapFile string, udpPort int, speed float64, out *os.File) (replayStats, error) {
	var stats replayStats

	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return stats, fmt.Errorf("open pcap file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return stats, fmt.Errorf("set BPF filter %q: %w", filter, err)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	var lastCaptureTime time.Time

	for packet := range packetSource.Packets() {
		stats.packets++

		if speed > 0 {
			capTime := packet.Metadata().Timestamp
			if !lastCaptureTime.IsZero() {
				gap := capTime.Sub(lastCaptureTime)
				if gap > 0 {
					time.Sleep(time.Duration(float64(gap) / speed))
				}
			}
			lastCaptureTime = capTime
		}

		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		payload := udpLayer.(*layers.UDP).Payload
		if len(payload) == 0 {
			continue
		}

		if !decodesAsPick(payload) {
			stats.dropped++
			continue
		}
		stats.decoded++
		if _, err := w.Write(payload); err != nil {
			return stats, fmt.Errorf("write replayed message: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return stats, fmt.Errorf("write newline: %w", err)
		}
	}

	return stats, nil
}

// decodesAsPick reports whether payload is a validating Pick wire
// message — other captured traffic on the same port (Correlation,
// StationInfo, Detection, Retract) is dropped, since glass-app's stdin
// ingest only reads Pick messages today.
func decodesAsPick(payload []byte) bool {
	var msg wire.PickMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return false
	}
	return msg.Validate() == nil
}
