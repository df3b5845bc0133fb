package result

import "encoding/json"

// jsonOutcome is Outcome's wire shape: regular outcomes carry Prints,
// exceptions carry the two exception fields, never both.
type jsonOutcome struct {
	Prints          [][]int32 `json:"prints,omitempty"`
	ExceptionThread *int      `json:"exception_thread,omitempty"`
	ExceptionLine   *int      `json:"exception_line,omitempty"`
}

// ToJSON encodes a slice of Outcome in the wire format FromJSON reads back;
// jmme-debug run --json writes its outcomes this way.
func ToJSON(outcomes []Outcome) ([]byte, error) {
	wire := make([]jsonOutcome, len(outcomes))
	for i, o := range outcomes {
		if o.Exception != nil {
			thread, line := o.Exception.Thread, o.Exception.Line
			wire[i] = jsonOutcome{ExceptionThread: &thread, ExceptionLine: &line}
			continue
		}
		wire[i] = jsonOutcome{Prints: o.Prints}
	}
	return json.MarshalIndent(wire, "", "  ")
}

// FromJSON parses the wire format ToJSON produces.
func FromJSON(data []byte) ([]Outcome, error) {
	var wire []jsonOutcome
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, len(wire))
	for i, w := range wire {
		if w.ExceptionThread != nil {
			outcomes[i] = Outcome{Exception: &Exception{Thread: *w.ExceptionThread, Line: *w.ExceptionLine}}
			continue
		}
		outcomes[i] = Outcome{Prints: w.Prints}
	}
	return outcomes, nil
}
