// Package logsapi implements driven.LogFetcher against the public chat
// logs API at logs.ivr.fi.
//
// One day of a channel is retrieved with a single request:
//
//	GET https://logs.ivr.fi/channel/{channel}/{yyyy}/{m}/{d}?json=true
//
// Requests are never retried. An optional client-side rate limit spaces
// requests out when backfilling long ranges.
package logsapi
