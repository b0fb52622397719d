package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// Relay datagram layout, big-endian:
//
//	magic (2B) | version (1B) | reserved (1B) | beacon id (4B) | rssi (2B, signed) | seq (2B)
const (
	frameSize    = 12
	frameMagic   = 0x5348 // "SH"
	frameVersion = 0x01
)

// udpReadTimeout bounds each blocking read so context cancellation is
// noticed promptly.
const udpReadTimeout = 200 * time.Millisecond

// frame is one decoded relay datagram.
type frame struct {
	BeaconID uint32
	DBm      float64
	Seq      uint16
}

// parseFrame decodes a single datagram. Anything that is not exactly one
// well-formed frame is malformed and gets dropped by the caller.
func parseFrame(buf []byte) (frame, error) {
	if len(buf) != frameSize {
		return frame{}, fmt.Errorf("frame is %d bytes, want %d", len(buf), frameSize)
	}
	if magic := binary.BigEndian.Uint16(buf[0:2]); magic != frameMagic {
		return frame{}, fmt.Errorf("bad magic 0x%04x", magic)
	}
	if buf[2] != frameVersion {
		return frame{}, fmt.Errorf("unknown frame version %d", buf[2])
	}
	return frame{
		BeaconID: binary.BigEndian.Uint32(buf[4:8]),
		DBm:      float64(int16(binary.BigEndian.Uint16(buf[8:10]))),
		Seq:      binary.BigEndian.Uint16(buf[10:12]),
	}, nil
}

// UDPSource listens for beacon sample datagrams relayed by the radio head.
// UDP's loss and reordering characteristics match the wireless channel
// contract, so nothing is retried or resequenced here.
type UDPSource struct {
	listen string
	log    *logger.Logger

	mu   sync.Mutex
	conn *net.UDPConn

	malformed uint64 // dropped datagrams, touched only by the Run goroutine
}

func NewUDPSource(cfg config.UDPConfig, log *logger.Logger) *UDPSource {
	return &UDPSource{listen: cfg.Listen, log: log}
}

func (s *UDPSource) Name() string { return "udp" }

// LocalAddr reports the bound address once Run has opened the socket,
// nil before that. Lets callers bind to port 0 and discover the port.
func (s *UDPSource) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run binds the socket and receives datagrams until ctx is canceled.
// A bind failure is returned to the caller; read errors after that are
// logged and skipped.
func (s *UDPSource) Run(ctx context.Context, sink chan<- models.Sample) error {
	addr, err := net.ResolveUDPAddr("udp", s.listen)
	if err != nil {
		return fmt.Errorf("resolve udp listen address %q: %w", s.listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen udp on %q: %w", s.listen, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.log.Infow("UDP sample source listening", "addr", conn.LocalAddr().String())

	buf := make([]byte, 64) // frames are 12 bytes; margin so oversize garbage is seen whole
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Bounded read so the ctx check above runs regularly.
		if err := conn.SetReadDeadline(time.Now().Add(udpReadTimeout)); err != nil {
			return fmt.Errorf("set udp read deadline: %w", err)
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Errorw("udp read failed", "err", err)
			continue
		}

		f, err := parseFrame(buf[:n])
		if err != nil {
			s.malformed++
			s.log.Debugw("dropping malformed datagram", "total_dropped", s.malformed, "err", err)
			continue
		}
		accepted := offer(sink, models.Sample{
			BeaconID: f.BeaconID,
			DBm:      f.DBm,
			At:       time.Now(),
			Source:   s.Name(),
		})
		if !accepted {
			s.log.Debugw("sample channel full, dropping sample",
				"beacon_id", f.BeaconID,
				"seq", f.Seq,
			)
		}
	}
}
