// Package booking defines the strict booking and support types and parses
// them from loosely-typed records.
//
// Records arrive from sources (JSON/YAML/CSV files, MongoDB documents) as
// map[string]any. [ParseRecord] turns one record into a [Booking] or
// returns an error describing why the record was rejected. [ParseRecords]
// applies it to a batch and collects per-record [Issue] values instead of
// failing the batch:
//
//	bookings, issues := booking.ParseRecords(records)
//	for _, is := range issues {
//	    logger.Warn("skipped booking", "id", is.ID, "reason", is.Err)
//	}
//
// # Supports
//
// Supports are looked up through a [Directory]. A booking whose support is
// not in the directory still resolves to a placeholder [Support] carrying
// only the ID, so unknown supports stay visible.
package booking
