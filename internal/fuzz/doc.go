// Package fuzztests houses Go fuzz harnesses for the unit codec and the
// normalization pipeline. Arbitrary bytes go through Unmarshal and Decode;
// whatever decodes is normalized and must keep the unit invariants.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/unit, internal/transform, internal/testkit.
package fuzztests
