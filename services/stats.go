package stats

import (
	"time"

	"github.com/hashicorp/go-metrics"
)

var statsEnabled bool

type StatCode int64

const (
	Success StatCode = iota
	Failed
)

func (s StatCode) String() string {
	switch s {
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var sink metrics.MetricSink

func Init() {
	statsEnabled = true
	sink = metrics.NewInmemSink(100*time.Millisecond, 60*time.Minute)

	metrics.NewGlobal(metrics.DefaultConfig("xano-connector"), sink)
}

type ConnectorStats struct {
	Name string
	Sink metrics.MetricSink
}

func NewStat(name string) *ConnectorStats {
	return &ConnectorStats{
		Name: name,
		Sink: sink,
	}
}

// Count bumps the operation outcome counter. A no-op until Init runs.
func (cStats *ConnectorStats) Count(code StatCode, count int) {
	if !statsEnabled || cStats.Sink == nil {
		return
	}
	cStats.Sink.IncrCounter([]string{cStats.Name, code.String()}, float32(count))
}
