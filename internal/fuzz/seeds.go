package fuzztests

import (
	"testing"

	"ilnorm/internal/testkit"
	"ilnorm/internal/unit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// addUnitSeeds adds a well-formed unit in the given encoding plus a few
// truncations of it.
func addUnitSeeds(f *testing.F, format unit.Format) {
	f.Helper()
	u, err := testkit.RedundantCastUnit(1, "Seed")
	if err != nil {
		f.Fatalf("seed unit: %v", err)
	}
	file, err := unit.Encode(u)
	if err != nil {
		f.Fatalf("encode seed: %v", err)
	}
	data, err := unit.Marshal(file, format)
	if err != nil {
		f.Fatalf("marshal seed: %v", err)
	}
	f.Add(data)
	for _, cut := range []int{len(data) / 2, len(data) - 1, 1} {
		if cut > 0 && cut < len(data) {
			f.Add(append([]byte(nil), data[:cut]...))
		}
	}
	f.Add([]byte{})
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
