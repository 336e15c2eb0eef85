package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Minimal RIFF/WAVE support for 16-bit PCM mono, which is what the engine
// consumes and produces. Anything else is rejected rather than resampled.

func readWAV(path string) (samples []int16, rate int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAVE file")
	}

	var (
		format     uint16
		channels   uint16
		sampleRate uint32
		bits       uint16
		pcm        []byte
	)

	// Walk the chunk list; chunks are word aligned.
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := data[off+8:]
		if size > len(body) {
			return nil, 0, fmt.Errorf("truncated %q chunk", id)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("short fmt chunk")
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bits = binary.LittleEndian.Uint16(body[14:16])
		case "data":
			pcm = body
		}

		off += 8 + size
		if size%2 == 1 {
			off++
		}
	}

	if pcm == nil {
		return nil, 0, fmt.Errorf("no data chunk")
	}
	if format != 1 || bits != 16 {
		return nil, 0, fmt.Errorf("only 16-bit PCM is supported")
	}
	if channels != 1 {
		return nil, 0, fmt.Errorf("only mono audio is supported, file has %d channels", channels)
	}

	samples = make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return samples, int(sampleRate), nil
}

func writeWAV(path string, samples []int16, rate int) error {
	dataSize := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))          // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))          // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))       // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))     // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))          // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))         // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
