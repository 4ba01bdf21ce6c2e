package gerbcore

import "errors"

// ErrUnrecognizedFormat is returned when the sniffer can't identify a
// file well enough to dispatch it to a parser.
var ErrUnrecognizedFormat = errors.New("gerbcore: unrecognized file format")
