// Package gerbcore ties together the Gerber/Excellon/IPC-D-356A
// ingestion core: sniffer, gerberx, excellon, ipc356a, image, search,
// and writer. It holds the root-level error sentinel and the go-fuzz
// entry points; named anomaly strings live in the image package
// alongside (*Image).AddAnomaly, and the object graph itself
// (Project/Image) lives in the project and image packages.
package gerbcore
