// Package metadatatest builds minimal TIFF containers for tests that need
// real embedded metadata without shipping camera files.
package metadatatest

import (
	"bytes"
	"encoding/binary"
)

const exifIFDPointer = 0x8769

// Tags are the signature fields written into a fixture. Empty strings and a
// zero ExposureDen are left out of the container.
type Tags struct {
	Make             string
	Model            string
	DateTimeOriginal string
	ExposureNum      uint32
	ExposureDen      uint32
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(b)), data: b}
}

func rationalEntry(tag uint16, num, den uint32) ifdEntry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], num)
	binary.LittleEndian.PutUint32(b[4:], den)
	return ifdEntry{tag: tag, typ: 5, count: 1, data: b}
}

// TIFF returns a little-endian TIFF holding tags in IFD0 and an EXIF sub-IFD.
func TIFF(tags Tags) []byte {
	var ifd0, exifIFD []ifdEntry
	if tags.Make != "" {
		ifd0 = append(ifd0, asciiEntry(0x010F, tags.Make))
	}
	if tags.Model != "" {
		ifd0 = append(ifd0, asciiEntry(0x0110, tags.Model))
	}
	if tags.ExposureDen != 0 {
		exifIFD = append(exifIFD, rationalEntry(0x829A, tags.ExposureNum, tags.ExposureDen))
	}
	if tags.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, tags.DateTimeOriginal))
	}
	return build(ifd0, exifIFD)
}

// NikonZ30 is a typical raw signature used across tests.
func NikonZ30(dateTime string) []byte {
	return TIFF(Tags{
		Make:             "NIKON CORPORATION",
		Model:            "NIKON Z 30",
		DateTimeOriginal: dateTime,
		ExposureNum:      1,
		ExposureDen:      250,
	})
}

func build(ifd0, exifIFD []ifdEntry) []byte {
	const headerSize = 8
	ifdSize := func(n int) int { return 2 + n*12 + 4 }

	ifd0Entries := append([]ifdEntry(nil), ifd0...)
	ifd0Entries = append(ifd0Entries, ifdEntry{tag: exifIFDPointer, typ: 4, count: 1})

	ifd0Off := headerSize
	exifOff := ifd0Off + ifdSize(len(ifd0Entries))
	dataOff := exifOff + ifdSize(len(exifIFD))

	var data bytes.Buffer
	place := func(e ifdEntry) []byte {
		v := make([]byte, 4)
		if len(e.data) <= 4 {
			copy(v, e.data)
			return v
		}
		binary.LittleEndian.PutUint32(v, uint32(dataOff+data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
		return v
	}
	writeIFD := func(buf *bytes.Buffer, entries []ifdEntry) {
		binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
		for _, e := range entries {
			binary.Write(buf, binary.LittleEndian, e.tag)
			binary.Write(buf, binary.LittleEndian, e.typ)
			binary.Write(buf, binary.LittleEndian, e.count)
			if e.tag == exifIFDPointer {
				binary.Write(buf, binary.LittleEndian, uint32(exifOff))
				continue
			}
			buf.Write(place(e))
		}
		binary.Write(buf, binary.LittleEndian, uint32(0))
	}

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, binary.LittleEndian, uint16(42))
	binary.Write(&out, binary.LittleEndian, uint32(ifd0Off))
	writeIFD(&out, ifd0Entries)
	writeIFD(&out, exifIFD)
	out.Write(data.Bytes())
	return out.Bytes()
}
