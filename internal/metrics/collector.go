package metrics

// Recorder is the set of game events the turn loop and tool handlers report.
// *PrometheusCollector implements it; Nop discards everything.
type Recorder interface {
	RecordMove(color string, captured int)
	RecordIllegalMove(reason string)
	GameStarted()
	RecordGameFinished(outcome string)
	RecordSave(success bool)
	RecordDecision(kind string, durationSecs float64)
	RecordToolCall(tool, status string, durationSecs float64)
}

var _ Recorder = (*PrometheusCollector)(nil)

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) RecordMove(string, int)                 {}
func (Nop) RecordIllegalMove(string)               {}
func (Nop) GameStarted()                           {}
func (Nop) RecordGameFinished(string)              {}
func (Nop) RecordSave(bool)                        {}
func (Nop) RecordDecision(string, float64)         {}
func (Nop) RecordToolCall(string, string, float64) {}
