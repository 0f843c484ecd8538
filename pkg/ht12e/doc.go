// Package ht12e decodes the serial output of an HT12E remote control encoder.
package ht12e

// The encoder transmits frames on a single line. A frame starts with a
// low sync pulse of 36 clock periods, followed by 12 data bits sent most
// significant first. Each bit is a high pulse of one period for 1 and two
// periods for 0, separated by short low gaps. There is no checksum, a
// frame is either decoded completely or discarded.
//
// The decoder never touches hardware directly. It consumes a Source which
// is implemented by pkg/pulse/gpio for real pins and by pkg/pulse/replay
// for scripted pulse trains.
