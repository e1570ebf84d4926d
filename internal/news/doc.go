// Package news defines the core types and collaborator interfaces shared by
// the acquisition and enrichment pipeline: search hits, article records,
// enriched records, entity mentions, and the policies (backoff, blocklist,
// user-agent rotation) the fetch path is built from.
package news
