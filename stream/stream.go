// Package stream implements the token handshake used at every core
// boundary: a payload qualified by valid/ready with first/last markers
// delimiting channel or frame boundaries inside an otherwise flat stream.
//
// A transfer occurs only on a tick where both Valid and Ready hold. The
// producer must hold Payload and Valid stable until acceptance; the
// consumer may assert Ready unconditionally or based on internal
// buffering. No other signaling exists.
//
// Driving convention: set a core's In port fields before calling its
// Tick, then sample the port afterwards: In.Ready after Tick reports
// whether the token was consumed on that tick, and Out.Valid after Tick
// reports that a token was transferred to a consumer that had asserted
// Out.Ready beforehand.
package stream

// Token is one stream element. First and Last tag channel boundaries,
// e.g. First marks a left sample and Last the matching right sample of a
// stereo pair.
type Token struct {
	Payload int64
	First   bool
	Last    bool
}

// Port is one endpoint of a valid/ready stream link.
type Port struct {
	Token
	Valid bool
	Ready bool
}

// Fires reports whether a transfer occurs on the current tick.
func (p *Port) Fires() bool {
	return p.Valid && p.Ready
}

// Put loads a token and asserts Valid.
func (p *Port) Put(t Token) {
	p.Token = t
	p.Valid = true
}

// Clear deasserts Valid and zeroes the token.
func (p *Port) Clear() {
	p.Token = Token{}
	p.Valid = false
}
