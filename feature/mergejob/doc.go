// Package mergejob exposes the merge engine over HTTP.
//
// A client creates a session, uploads ARXML files into it, triggers the
// merge, then polls the session status and downloads the merged document and
// its report. Sessions are held in memory and swept after a configurable TTL.
//
// When an artifact archive (MinIO) is configured, merged output is uploaded
// there as jobs/<session-id>/merged.arxml. When a job history database is
// configured, each finished run is recorded in the merge_jobs table.
//
// The interactive conflict strategy is deliberately unavailable here; a
// suspended merge would pin server state between requests. Interactive runs
// belong to the CLI.
package mergejob
