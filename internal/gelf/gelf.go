package gelf

import (
	"encoding/json"
	"net"
	"os"

	log "github.com/sirupsen/logrus"
)

// Hook forwards log entries to a GELF endpoint over UDP. Delivery is
// fire-and-forget; a logging outage must never block requests.
type Hook struct {
	conn     net.Conn
	hostname string
}

// NewHook connects to addr (e.g. "172.17.0.1:12201").
func NewHook(addr string) (*Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "studio-cms"
	}

	return &Hook{conn: conn, hostname: hostname}, nil
}

func (h *Hook) Levels() []log.Level {
	return log.AllLevels
}

// gelfLevels maps logrus levels onto syslog severities.
var gelfLevels = map[log.Level]int{
	log.PanicLevel: 2,
	log.FatalLevel: 2,
	log.ErrorLevel: 3,
	log.WarnLevel:  4,
	log.InfoLevel:  6,
	log.DebugLevel: 7,
	log.TraceLevel: 7,
}

func (h *Hook) Fire(entry *log.Entry) error {
	msg := map[string]any{
		"version":       "1.1",
		"host":          h.hostname,
		"short_message": entry.Message,
		"timestamp":     float64(entry.Time.UnixNano()) / 1e9,
		"level":         gelfLevels[entry.Level],
		"_service":      "studio-cms",
	}
	for k, v := range entry.Data {
		msg["_"+k] = v
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil
	}
	h.conn.Write(payload)
	return nil
}

func (h *Hook) Close() error {
	return h.conn.Close()
}
