package gerbcore

import (
	"github.com/pcbtools/gerbcore/excellon"
	"github.com/pcbtools/gerbcore/gerberx"
	"github.com/pcbtools/gerbcore/ipc356a"
)

// FuzzGerber is a go-fuzz entry point exercising gerberx.ParseBytes
// against arbitrary input.
func FuzzGerber(data []byte) int {
	img, err := gerberx.ParseBytes(data, "fuzz.gbr", ".", nil)
	if err != nil {
		return 0
	}
	_ = img
	return 1
}

// FuzzExcellon is a go-fuzz entry point exercising excellon.ParseBytes.
func FuzzExcellon(data []byte) int {
	img, err := excellon.ParseBytes(data, "fuzz.drl", ".", nil)
	if err != nil {
		return 0
	}
	_ = img
	return 1
}

// FuzzIPC is a go-fuzz entry point exercising ipc356a.ParseBytes.
func FuzzIPC(data []byte) int {
	img, err := ipc356a.ParseBytes(data, "fuzz.ipc", ".", nil)
	if err != nil {
		return 0
	}
	_ = img
	return 1
}
