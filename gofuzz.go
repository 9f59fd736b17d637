// +build gofuzz

package nif

func Fuzz(b []byte) (rc int) {
	p := NewParser()
	if _, err := p.Parse(b, "fuzz.nif"); err != nil {
		return 0
	}
	return 1
}

func FuzzRoundtrip(b []byte) (rc int) {
	p := NewParser()
	m, err := p.Parse(b, "fuzz.nif")
	if err != nil {
		return 0
	}

	sink := &sliceWriteSeeker{}
	wr := NewWriter(WriteOptions{})
	if err := wr.Write(sink, m); err != nil {
		panic(err)
	}
	return 1
}
