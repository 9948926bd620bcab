// Package file provides the flat-file storage backend.
//
// Each ingested day is written as one JSON document:
//
//	<root>/<channel>/<yyyy-mm-dd>.json
//
// The backend keeps no ledger. Every run fetches and overwrites every day
// in range; NullLedger makes that explicit to the orchestrator.
package file
