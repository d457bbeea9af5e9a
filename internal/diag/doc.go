// Package diag defines the diagnostic model shared by the normalization
// passes, the unit loader and the driver.
//
// Diagnostics here are mostly remarks: a transform that removes a cast or
// pins an overload says so at SevInfo so the CLI can explain what changed.
// Missing annotations and unresolved symbols are expected input and are
// reported at most as info; they never fail a pass.
//
// # Data model
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form (NRM, UNT, OBS).
//   - Message – short human text.
//   - Primary span – the IL range of the node the remark is about.
//   - Notes – optional secondary spans.
//
// Producers emit through a Reporter. BagReporter collects into a Bag that
// keeps at most its limit and counts the rest; DedupReporter drops repeats
// and SyncReporter lets parallel units share one sink. FormatGolden renders a bag into stable one-line
// entries for golden tests and the CLI short output.
package diag
