// Package api contains the HTTP handlers for the exam service: the
// per-category exam endpoints, the write evaluation flow, and the
// administrative job listing, together with the error-to-status mapping
// shared by all of them.
package api
