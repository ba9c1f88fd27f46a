package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// EncodeWAV wraps raw little-endian PCM16 mono samples in a RIFF/WAVE header
// so they can be played back or submitted to a transcription API.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

// IsWAV reports whether data starts with a RIFF/WAVE header. Synthesizers
// that return raw PCM get wrapped before playback.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// wavInfo holds the fields of a WAV header needed for playback.
type wavInfo struct {
	SampleRate int
	Channels   int
	Bits       int
}

// decodeWAVHeader parses the fmt chunk of a RIFF/WAVE file.
func decodeWAVHeader(data []byte) (*wavInfo, error) {
	if !IsWAV(data) {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	// Walk chunks until "fmt ".
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if id == "fmt " {
			if off+8+16 > len(data) {
				return nil, errors.New("truncated fmt chunk")
			}
			body := data[off+8:]
			return &wavInfo{
				Channels:   int(binary.LittleEndian.Uint16(body[2:4])),
				SampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
				Bits:       int(binary.LittleEndian.Uint16(body[14:16])),
			}, nil
		}
		off += 8 + size
		if size%2 == 1 {
			off++
		}
	}
	return nil, fmt.Errorf("no fmt chunk found")
}
