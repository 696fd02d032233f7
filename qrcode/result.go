package qrcode

// Point is one corner of a decoded symbol in image coordinates.
type Point struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

// Payload is one decoded symbol. Points is never nil.
type Payload struct {
	Text   string  `json:"text" yaml:"text"`
	Points []Point `json:"points" yaml:"points"`
}

func (p Payload) clone() Payload {
	return Payload{Text: p.Text, Points: append(make([]Point, 0, len(p.Points)), p.Points...)}
}

// Result is either a success carrying payloads in native order, or a
// failure carrying one error code. The zero value is an empty success.
type Result struct {
	code     ErrorCode
	payloads []Payload
}

func success(payloads []Payload) Result {
	if payloads == nil {
		payloads = []Payload{}
	}
	return Result{code: CodeOK, payloads: payloads}
}

func failure(code ErrorCode) Result {
	if code == CodeOK {
		code = CodeUnknown
	}
	return Result{code: code}
}

// OK reports whether detection succeeded. A success may hold no payloads.
func (r Result) OK() bool { return r.code == CodeOK }

// Code returns CodeOK on success or the failure code.
func (r Result) Code() ErrorCode { return r.code }

// Len returns the number of payloads; 0 on failure.
func (r Result) Len() int { return len(r.payloads) }

// Payloads returns a copy of the decoded payloads; nil on failure.
func (r Result) Payloads() []Payload {
	if !r.OK() {
		return nil
	}
	out := make([]Payload, len(r.payloads))
	for i, p := range r.payloads {
		out[i] = p.clone()
	}
	return out
}

// Payload returns the payload at index i.
func (r Result) Payload(i int) (Payload, bool) {
	if i < 0 || i >= len(r.payloads) {
		return Payload{}, false
	}
	return r.payloads[i].clone(), true
}

// Texts returns the decoded texts in order.
func (r Result) Texts() []string {
	out := make([]string, len(r.payloads))
	for i, p := range r.payloads {
		out[i] = p.Text
	}
	return out
}

// Err returns nil on success or an *Error carrying the failure code.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Code: r.code}
}

// Report is a serialisable snapshot of a Result.
type Report struct {
	OK        bool      `json:"ok" yaml:"ok"`
	Code      string    `json:"code" yaml:"code"`
	CodeValue int32     `json:"code_value" yaml:"code_value"`
	Payloads  []Payload `json:"payloads" yaml:"payloads"`
}

// Report converts the result for JSON or YAML output.
func (r Result) Report() Report {
	payloads := r.Payloads()
	if payloads == nil {
		payloads = []Payload{}
	}
	return Report{OK: r.OK(), Code: r.code.String(), CodeValue: r.code.Value(), Payloads: payloads}
}
