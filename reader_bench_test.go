package laxcsv

import (
	stdcsv "encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
)

func benchmarkData() string {
	return strings.Repeat(`xxxxxxxxxxxxxxxx,yyyyyyyyyyyyyyyy,"zzzz,zzzz",wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww, padded field ,vvvv
xxxxxxxxxxxxxxxxxxxxxxxx,"yyyy""yyyy",zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,wwww,,vvvv
,,zzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww,v,vvvv
`, 64)
}

func BenchmarkParseLine(b *testing.B) {
	lines := strings.Split(strings.TrimSuffix(benchmarkData(), "\n"), "\n")
	var total int
	for _, l := range lines {
		total += len(l) + 1
	}
	b.ReportAllocs()
	b.SetBytes(int64(total))

	for i := 0; i < b.N; i++ {
		for _, line := range lines {
			if fields := ParseLine(line, '"', ','); len(fields) == 0 {
				b.Fatal("no fields")
			}
		}
	}
}

func BenchmarkReader(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		r := NewReader(strings.NewReader(data))
		for {
			if _, err := r.ReadLine(); err != nil {
				if errors.Is(err, ErrEndOfInput) {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkEncodingCSV(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		cr := stdcsv.NewReader(strings.NewReader(data))
		cr.FieldsPerRecord = -1
		for {
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}
