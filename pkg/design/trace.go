package design

import "log"

// TraceSink receives evaluation progress events. Sinks are injected into
// the Evaluator; the engine itself holds no ambient logging state.
type TraceSink interface {
	// NodeEvaluated fires after a node's handler returns, with cached
	// reporting whether the result came from the memo cache.
	NodeEvaluated(node NodeID, t Template, cached bool)
	// RootEvaluated fires once per evaluation pass, after the root
	// value is produced or the pass fails.
	RootEvaluated(root OutputID, err error)
}

// nopSink discards all events.
type nopSink struct{}

func (nopSink) NodeEvaluated(NodeID, Template, bool) {}
func (nopSink) RootEvaluated(OutputID, error)        {}

// LogSink writes events to a standard library logger.
type LogSink struct {
	Logger *log.Logger
}

func (s *LogSink) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *LogSink) NodeEvaluated(node NodeID, t Template, cached bool) {
	if cached {
		s.logf("eval: %s (%s) from cache", node, t)
		return
	}
	s.logf("eval: %s (%s)", node, t)
}

func (s *LogSink) RootEvaluated(root OutputID, err error) {
	if err != nil {
		s.logf("eval: root %s failed: %v", root, err)
		return
	}
	s.logf("eval: root %s done", root)
}
